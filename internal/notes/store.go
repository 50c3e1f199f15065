// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidParent is returned when a parent block does not belong to
	// the target page. The mutation is not applied and no transaction is
	// pushed.
	ErrInvalidParent = errors.New("parent block does not belong to page")

	// ErrCyclicMove is returned when a move would make a block its own
	// ancestor. The mutation is not applied and no transaction is pushed.
	ErrCyclicMove = errors.New("move would create a cycle")

	// ErrPageNotFound is returned when creating a block on an unknown page.
	ErrPageNotFound = errors.New("page not found")
)

// =============================================================================
// CHANGE EVENTS
// =============================================================================

// EventKind classifies a store change.
type EventKind int

const (
	EventBlockCreated EventKind = iota
	EventBlockUpdated
	EventBlockDeleted
	EventBlockMoved
	EventPageCreated
	EventReset // full reload from persistence
)

// Event describes one store change. Subscribers recompute whatever they
// derive (visible lists, surface markup, dirty flags) from these.
type Event struct {
	Kind    EventKind
	PageID  PageID
	BlockID BlockID
}

// =============================================================================
// STORE
// =============================================================================

// Store is the canonical in-memory model of all pages and blocks. All
// mutation goes through its operation methods; direct field edits never
// happen outside this package. Change notification is by explicit
// subscription, never by ambient global access.
type Store struct {
	mu          sync.RWMutex
	pages       map[PageID]*Page
	pagesByName map[string]PageID
	blocks      map[BlockID]*Block

	history *History

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		pages:       make(map[PageID]*Page),
		pagesByName: make(map[string]PageID),
		blocks:      make(map[BlockID]*Block),
		subs:        make(map[int]func(Event)),
		now:         time.Now,
	}
}

// attachHistory wires the history that records transactions for this
// store. Called by NewHistory.
func (s *Store) attachHistory(h *History) {
	s.mu.Lock()
	s.history = h
	s.mu.Unlock()
}

// Subscribe registers a change listener and returns its cancel function.
// Listeners run synchronously after the mutation, outside the store lock.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(events []Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (s *Store) record(tx *Transaction) {
	if s.history != nil && !tx.isEmpty() {
		s.history.record(tx)
	}
}

func (tx *Transaction) isEmpty() bool { return tx == nil || len(tx.Forward) == 0 }

// =============================================================================
// PAGES
// =============================================================================

// CreatePage creates a page for the given title. If a page with the same
// normalized name already exists it is returned unchanged; pages are never
// silently merged or duplicated.
func (s *Store) CreatePage(title string, isJournal bool) *Page {
	name := NormalizePageName(title)

	s.mu.Lock()
	if id, ok := s.pagesByName[name]; ok {
		p := s.pages[id].Clone()
		s.mu.Unlock()
		return p
	}
	now := s.now()
	p := &Page{
		ID:        NewPageID(),
		Title:     title,
		Name:      name,
		IsJournal: isJournal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.pages[p.ID] = p
	s.pagesByName[name] = p.ID
	cp := p.Clone()
	s.mu.Unlock()

	s.notify([]Event{{Kind: EventPageCreated, PageID: p.ID}})
	return cp
}

// ResolvePage returns the page for a title, creating it on first
// reference. This is the autocreate-on-link path.
func (s *Store) ResolvePage(title string) *Page {
	return s.CreatePage(title, false)
}

// JournalPage returns the date-keyed journal page for a day, creating it
// on first visit.
func (s *Store) JournalPage(day time.Time) *Page {
	return s.CreatePage(day.Format("2006-01-02"), true)
}

// Page returns a copy of the page, if known.
func (s *Store) Page(id PageID) (*Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// PageByName looks a page up by its normalized name.
func (s *Store) PageByName(name string) (*Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pagesByName[NormalizePageName(name)]
	if !ok {
		return nil, false
	}
	return s.pages[id].Clone(), true
}

// Pages returns copies of all pages in stable title order.
func (s *Store) Pages() []*Page {
	s.mu.RLock()
	out := make([]*Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()
	sortPages(out)
	return out
}

// =============================================================================
// BLOCK ACCESS
// =============================================================================

// Block returns a copy of the block, if known.
func (s *Store) Block(id BlockID) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// BlockContent returns the canonical content of a block, or "" when the
// block is unknown.
func (s *Store) BlockContent(id BlockID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.blocks[id]; ok {
		return b.Content
	}
	return ""
}

// Blocks returns copies of all blocks of a page in document order: each
// sibling group sorted by (order, id), parents before their descendants.
func (s *Store) Blocks(pageID PageID) []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentOrderLocked(pageID)
}

// VisibleBlocks returns the flattened list of blocks of a page that should
// currently render, honoring collapsed headings and toggles.
func (s *Store) VisibleBlocks(pageID PageID) []*Block {
	return Visible(s.Blocks(pageID))
}

// documentOrderLocked builds the depth-first flattened block list. One
// pass builds the parent->children index; emission then follows the tree.
func (s *Store) documentOrderLocked(pageID PageID) []*Block {
	children := make(map[BlockID][]*Block)
	var roots []*Block
	total := 0
	for _, b := range s.blocks {
		if b.PageID != pageID {
			continue
		}
		total++
		if b.ParentID == nil {
			roots = append(roots, b)
		} else {
			children[*b.ParentID] = append(children[*b.ParentID], b)
		}
	}
	SortSiblings(roots)
	for _, group := range children {
		SortSiblings(group)
	}

	out := make([]*Block, 0, total)
	var emit func(b *Block)
	emit = func(b *Block) {
		out = append(out, b.Clone())
		for _, c := range children[b.ID] {
			emit(c)
		}
	}
	for _, r := range roots {
		emit(r)
	}
	return out
}

// siblingsLocked returns the sorted sibling group for (pageID, parentID).
func (s *Store) siblingsLocked(pageID PageID, parentID *BlockID) []*Block {
	var group []*Block
	for _, b := range s.blocks {
		if b.PageID != pageID {
			continue
		}
		if !sameParent(b.ParentID, parentID) {
			continue
		}
		group = append(group, b)
	}
	SortSiblings(group)
	return group
}

// childrenLocked returns the sorted direct children of a block.
func (s *Store) childrenLocked(id BlockID) []*Block {
	var group []*Block
	for _, b := range s.blocks {
		if b.ParentID != nil && *b.ParentID == id {
			group = append(group, b)
		}
	}
	SortSiblings(group)
	return group
}

func sameParent(a, b *BlockID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// isDescendantLocked reports whether candidate is id itself or one of its
// descendants.
func (s *Store) isDescendantLocked(id, candidate BlockID) bool {
	if id == candidate {
		return true
	}
	b, ok := s.blocks[candidate]
	for ok && b.ParentID != nil {
		if *b.ParentID == id {
			return true
		}
		b, ok = s.blocks[*b.ParentID]
	}
	return false
}

// orderAmongLocked computes a fresh order key inserting after afterID
// within the sibling group. AtStart inserts before the first sibling; nil
// or an id not part of the group appends at the end.
func (s *Store) orderAmongLocked(group []*Block, afterID *BlockID) string {
	if afterID == AtStart {
		first := ""
		if len(group) > 0 {
			first = group[0].Order
		}
		return KeyBetween("", first)
	}
	if afterID != nil {
		for i, sib := range group {
			if sib.ID == *afterID {
				next := ""
				if i+1 < len(group) {
					next = group[i+1].Order
				}
				return KeyBetween(sib.Order, next)
			}
		}
	}
	last := ""
	if len(group) > 0 {
		last = group[len(group)-1].Order
	}
	return KeyBetween(last, "")
}

// =============================================================================
// COMMAND APPLICATION
// =============================================================================

// ApplyCommands replays commands against the store. Undo/redo and any
// collaborator that synthesizes commands go through here, so downstream
// recomputation (subscriptions, persistence hooks) fires identically to
// ordinary edits. Commands referencing unknown blocks are skipped.
func (s *Store) ApplyCommands(cmds []Command) {
	s.mu.Lock()
	var events []Event
	for _, cmd := range cmds {
		events = append(events, s.applyCommandLocked(cmd)...)
	}
	s.mu.Unlock()
	s.notify(events)
}

func (s *Store) applyCommandLocked(cmd Command) []Event {
	now := s.now()
	switch cmd.Action {
	case ActionCreate:
		if _, exists := s.blocks[cmd.BlockID]; exists || cmd.Data == nil {
			return nil
		}
		st := cmd.Data.clone()
		b := &Block{
			ID:         cmd.BlockID,
			PageID:     cmd.PageID,
			ParentID:   st.ParentID,
			Order:      st.Order,
			Type:       st.Type,
			Properties: st.Properties,
			Content:    st.Content,
			Indent:     st.Indent,
			Collapsed:  st.Collapsed,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.blocks[b.ID] = b
		s.touchPageLocked(cmd.PageID, now)
		return []Event{{Kind: EventBlockCreated, PageID: cmd.PageID, BlockID: cmd.BlockID}}

	case ActionUpdate:
		b, ok := s.blocks[cmd.BlockID]
		if !ok || cmd.Data == nil {
			return nil
		}
		st := cmd.Data.clone()
		b.Type = st.Type
		b.Properties = st.Properties
		b.Content = st.Content
		b.Collapsed = st.Collapsed
		b.UpdatedAt = now
		s.touchPageLocked(cmd.PageID, now)
		return []Event{{Kind: EventBlockUpdated, PageID: cmd.PageID, BlockID: cmd.BlockID}}

	case ActionDelete:
		if _, ok := s.blocks[cmd.BlockID]; !ok {
			return nil
		}
		delete(s.blocks, cmd.BlockID)
		s.touchPageLocked(cmd.PageID, now)
		return []Event{{Kind: EventBlockDeleted, PageID: cmd.PageID, BlockID: cmd.BlockID}}

	case ActionMove:
		b, ok := s.blocks[cmd.BlockID]
		if !ok || cmd.Data == nil {
			return nil
		}
		st := cmd.Data.clone()
		b.ParentID = st.ParentID
		b.Order = st.Order
		b.Indent = st.Indent
		b.UpdatedAt = now
		s.touchPageLocked(cmd.PageID, now)
		return []Event{{Kind: EventBlockMoved, PageID: cmd.PageID, BlockID: cmd.BlockID}}
	}
	return nil
}

func (s *Store) touchPageLocked(id PageID, now time.Time) {
	if p, ok := s.pages[id]; ok {
		p.UpdatedAt = now
	}
}

// =============================================================================
// STRUCTURAL OPERATIONS
// =============================================================================

// CreateBlock inserts a new block immediately after afterID among the
// siblings under parentID (at the end when afterID is nil). An empty typ
// defaults to paragraph. Returns ErrInvalidParent when parentID does not
// belong to pageID.
func (s *Store) CreateBlock(pageID PageID, parentID, afterID *BlockID, content string, typ BlockType, props map[string]string) (BlockID, error) {
	if typ == "" {
		typ = TypeParagraph
	}

	s.mu.Lock()
	if _, ok := s.pages[pageID]; !ok {
		s.mu.Unlock()
		return "", ErrPageNotFound
	}
	indent := 0
	if parentID != nil {
		parent, ok := s.blocks[*parentID]
		if !ok || parent.PageID != pageID {
			s.mu.Unlock()
			return "", ErrInvalidParent
		}
		indent = parent.Indent + 1
	}
	group := s.siblingsLocked(pageID, parentID)
	order := s.orderAmongLocked(group, afterID)

	id := NewBlockID()
	var tb txBuilder
	tb.add(Command{
		Action:  ActionCreate,
		BlockID: id,
		PageID:  pageID,
		Data: &BlockState{
			ParentID:   parentID,
			Order:      order,
			Type:       typ,
			Properties: cloneProps(props),
			Content:    content,
			Indent:     indent,
		},
	})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
	return id, nil
}

// UpdateContent replaces a block's content as one discrete transaction.
// Unchanged content is still recorded so caller logic stays simple.
// Unknown ids are a no-op.
func (s *Store) UpdateContent(id BlockID, content string) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	after := before.clone()
	after.Content = content

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// UpdateContentLive replaces a block's content on the coalesced typing
// path: the mutation applies immediately, but the transaction is buffered
// in the history's quiet-period burst. Both the human editor and the AI
// writer stream through here. Unknown ids are a no-op.
func (s *Store) UpdateContentLive(id BlockID, content string) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	b.Content = content
	b.UpdatedAt = s.now()
	after := captureState(b)
	pageID := b.PageID
	s.touchPageLocked(pageID, b.UpdatedAt)
	s.mu.Unlock()

	if s.history != nil {
		s.history.recordTyping(id, pageID, before, after)
	}
	s.notify([]Event{{Kind: EventBlockUpdated, PageID: pageID, BlockID: id}})
}

// ChangeType replaces a block's type and merges the given properties over
// its existing ones. Leaving a collapsible type resets collapsed. Unknown
// ids are a no-op.
func (s *Store) ChangeType(id BlockID, typ BlockType, props map[string]string) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	after := before.clone()
	after.Type = typ
	if after.Properties == nil && len(props) > 0 {
		after.Properties = make(map[string]string, len(props))
	}
	for k, v := range props {
		after.Properties[k] = v
	}
	if !typ.Collapsible() {
		after.Collapsed = false
	}

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// SetProperty sets one property as a discrete transaction (todo checks,
// callout kinds). Unknown ids are a no-op.
func (s *Store) SetProperty(id BlockID, key, value string) {
	s.SetProperties(id, map[string]string{key: value})
}

// SetProperties merges several properties as one discrete transaction
// (embed targets set id and title together). Unknown ids are a no-op.
func (s *Store) SetProperties(id BlockID, props map[string]string) {
	if len(props) == 0 {
		return
	}
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	after := before.clone()
	if after.Properties == nil {
		after.Properties = make(map[string]string, len(props))
	}
	for k, v := range props {
		after.Properties[k] = v
	}

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// CommitTypeChange performs a command-menu commit in one transaction: the
// trigger-and-query text is replaced by content while the type changes and
// props merge in. Leaving a collapsible type resets collapsed. Unknown ids
// are a no-op.
func (s *Store) CommitTypeChange(id BlockID, typ BlockType, props map[string]string, content string) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	after := before.clone()
	after.Type = typ
	after.Content = content
	if after.Properties == nil && len(props) > 0 {
		after.Properties = make(map[string]string, len(props))
	}
	for k, v := range props {
		after.Properties[k] = v
	}
	if !typ.Collapsible() {
		after.Collapsed = false
	}

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// ToggleCollapsed flips the collapsed flag on heading and toggle blocks.
// A no-op for every other type and for unknown ids.
func (s *Store) ToggleCollapsed(id BlockID) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok || !b.Type.Collapsible() {
		s.mu.Unlock()
		return
	}
	before := captureState(b)
	after := before.clone()
	after.Collapsed = !after.Collapsed

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// DeleteBlock removes a block. Children are not deleted with it: they are
// reparented to the deleted block's parent at its former position,
// preserving their relative order. Unknown ids are a no-op.
func (s *Store) DeleteBlock(id BlockID) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}

	var tb txBuilder
	s.reparentChildrenLocked(&tb, b, b.ParentID, b.Order, s.nextSiblingOrderLocked(b), -1)
	tb.add(Command{Action: ActionDelete, BlockID: id, PageID: b.PageID, Data: captureState(b)})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// nextSiblingOrderLocked returns the order key of the sibling following b,
// or "" when b is last.
func (s *Store) nextSiblingOrderLocked(b *Block) string {
	group := s.siblingsLocked(b.PageID, b.ParentID)
	for i, sib := range group {
		if sib.ID == b.ID && i+1 < len(group) {
			return group[i+1].Order
		}
	}
	return ""
}

// reparentChildrenLocked emits move commands transferring b's children to
// newParent, slotting them between the order keys lo and hi and shifting
// their indent by indentDelta. Relative order is preserved.
func (s *Store) reparentChildrenLocked(tb *txBuilder, b *Block, newParent *BlockID, lo, hi string, indentDelta int) {
	prev := lo
	for _, child := range s.childrenLocked(b.ID) {
		key := KeyBetween(prev, hi)
		prev = key
		indent := child.Indent + indentDelta
		if indent < 0 {
			indent = 0
		}
		tb.add(Command{
			Action:   ActionMove,
			BlockID:  child.ID,
			PageID:   child.PageID,
			Data:     &BlockState{ParentID: copyID(newParent), Order: key, Type: child.Type, Properties: cloneProps(child.Properties), Content: child.Content, Indent: indent, Collapsed: child.Collapsed},
			Previous: captureState(child),
		})
	}
}

// IndentBlock nests a block under its preceding sibling, appended after
// that sibling's existing children. A no-op when there is no preceding
// sibling at the same depth, or for unknown ids.
func (s *Store) IndentBlock(id BlockID) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	group := s.siblingsLocked(b.PageID, b.ParentID)
	var prev *Block
	for i, sib := range group {
		if sib.ID == id {
			if i > 0 {
				prev = group[i-1]
			}
			break
		}
	}
	if prev == nil {
		s.mu.Unlock()
		return
	}
	last := ""
	if kids := s.childrenLocked(prev.ID); len(kids) > 0 {
		last = kids[len(kids)-1].Order
	}
	pid := prev.ID

	var tb txBuilder
	tb.add(Command{
		Action:   ActionMove,
		BlockID:  id,
		PageID:   b.PageID,
		Data:     &BlockState{ParentID: &pid, Order: KeyBetween(last, ""), Type: b.Type, Properties: cloneProps(b.Properties), Content: b.Content, Indent: b.Indent + 1, Collapsed: b.Collapsed},
		Previous: captureState(b),
	})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// OutdentBlock moves a block up to its grandparent, immediately after its
// current parent. A no-op at depth 0 and for unknown ids.
func (s *Store) OutdentBlock(id BlockID) {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok || b.ParentID == nil {
		s.mu.Unlock()
		return
	}
	parent, ok := s.blocks[*b.ParentID]
	if !ok {
		s.mu.Unlock()
		return
	}
	order := KeyBetween(parent.Order, s.nextSiblingOrderLocked(parent))
	indent := b.Indent - 1
	if indent < 0 {
		indent = 0
	}

	var tb txBuilder
	tb.add(Command{
		Action:   ActionMove,
		BlockID:  id,
		PageID:   b.PageID,
		Data:     &BlockState{ParentID: copyID(parent.ParentID), Order: order, Type: b.Type, Properties: cloneProps(b.Properties), Content: b.Content, Indent: indent, Collapsed: b.Collapsed},
		Previous: captureState(b),
	})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
}

// AtStart is a sentinel afterID for MoveBlock placing the block before
// the first sibling of its group. A nil afterID appends at the end, so
// "move to first" needs its own spelling.
var AtStart = &atStartID

var atStartID BlockID = "at-start"

// MoveBlock reparents and reorders a block (drag move). afterID selects
// the sibling the block lands after; nil appends at the end and AtStart
// places it first. Returns ErrCyclicMove when newParentID is the block
// itself or one of its descendants, ErrInvalidParent when the parent
// belongs to another page. Unknown ids are a no-op.
func (s *Store) MoveBlock(id BlockID, newParentID, afterID *BlockID) error {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	indent := 0
	if newParentID != nil {
		if s.isDescendantLocked(id, *newParentID) {
			s.mu.Unlock()
			return ErrCyclicMove
		}
		parent, ok := s.blocks[*newParentID]
		if !ok || parent.PageID != b.PageID {
			s.mu.Unlock()
			return ErrInvalidParent
		}
		indent = parent.Indent + 1
	}
	group := s.siblingsLocked(b.PageID, newParentID)
	// Exclude the moving block itself so its old slot doesn't skew the key.
	filtered := group[:0:0]
	for _, sib := range group {
		if sib.ID != id {
			filtered = append(filtered, sib)
		}
	}
	order := s.orderAmongLocked(filtered, afterID)

	var tb txBuilder
	tb.add(Command{
		Action:   ActionMove,
		BlockID:  id,
		PageID:   b.PageID,
		Data:     &BlockState{ParentID: copyID(newParentID), Order: order, Type: b.Type, Properties: cloneProps(b.Properties), Content: b.Content, Indent: indent, Collapsed: b.Collapsed},
		Previous: captureState(b),
	})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
	return nil
}

// SplitBlock shrinks a block to contentBefore and creates a new sibling
// immediately after it carrying contentAfter with the same type and
// properties, so heading levels and list markers continue across the
// split. Children stay with the original block. Returns the new block id;
// unknown ids are a no-op returning "".
func (s *Store) SplitBlock(id BlockID, contentBefore, contentAfter string) BlockID {
	s.mu.Lock()
	b, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return ""
	}
	before := captureState(b)
	after := before.clone()
	after.Content = contentBefore

	newID := NewBlockID()
	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: id, PageID: b.PageID, Data: after, Previous: before})
	tb.add(Command{
		Action:  ActionCreate,
		BlockID: newID,
		PageID:  b.PageID,
		Data: &BlockState{
			ParentID:   copyID(b.ParentID),
			Order:      KeyBetween(b.Order, s.nextSiblingOrderLocked(b)),
			Type:       b.Type,
			Properties: cloneProps(b.Properties),
			Content:    contentAfter,
			Indent:     b.Indent,
		},
	})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
	return newID
}

// MergeBlockUp appends a block's content to its previous sibling (or, when
// first among its siblings, to its parent), transfers its children to the
// surviving block, and deletes it. Returns the survivor's id; ok is false
// when there is nothing to merge into (first block in the document) or the
// id is unknown.
func (s *Store) MergeBlockUp(id BlockID) (survivor BlockID, ok bool) {
	s.mu.Lock()
	b, exists := s.blocks[id]
	if !exists {
		s.mu.Unlock()
		return "", false
	}
	group := s.siblingsLocked(b.PageID, b.ParentID)
	var target *Block
	for i, sib := range group {
		if sib.ID == id {
			if i > 0 {
				target = group[i-1]
			}
			break
		}
	}
	if target == nil && b.ParentID != nil {
		target = s.blocks[*b.ParentID]
	}
	if target == nil {
		s.mu.Unlock()
		return "", false
	}

	tBefore := captureState(target)
	tAfter := tBefore.clone()
	tAfter.Content = target.Content + b.Content

	var tb txBuilder
	tb.add(Command{Action: ActionUpdate, BlockID: target.ID, PageID: target.PageID, Data: tAfter, Previous: tBefore})
	last := ""
	if kids := s.childrenLocked(target.ID); len(kids) > 0 {
		last = kids[len(kids)-1].Order
	}
	tid := target.ID
	s.reparentChildrenLocked(&tb, b, &tid, last, "", target.Indent-b.Indent)
	tb.add(Command{Action: ActionDelete, BlockID: id, PageID: b.PageID, Data: captureState(b)})
	events := s.applyAllLocked(tb.fwd)
	s.mu.Unlock()

	s.record(tb.tx())
	s.notify(events)
	return tid, true
}

func (s *Store) applyAllLocked(cmds []Command) []Event {
	var events []Event
	for _, cmd := range cmds {
		events = append(events, s.applyCommandLocked(cmd)...)
	}
	return events
}

// =============================================================================
// SNAPSHOT / RELOAD
// =============================================================================

// Snapshot returns copies of every page and block, for the persistence
// collaborator. Blocks are grouped per page in document order.
func (s *Store) Snapshot() ([]*Page, []*Block) {
	pages := s.Pages()
	var blocks []*Block
	for _, p := range pages {
		blocks = append(blocks, s.Blocks(p.ID)...)
	}
	return pages, blocks
}

// Load replaces the whole store contents from persisted state. History is
// not consulted; loading is not an edit. Subscribers receive one reset
// event.
func (s *Store) Load(pages []*Page, blocks []*Block) {
	s.mu.Lock()
	s.pages = make(map[PageID]*Page, len(pages))
	s.pagesByName = make(map[string]PageID, len(pages))
	s.blocks = make(map[BlockID]*Block, len(blocks))
	for _, p := range pages {
		cp := p.Clone()
		if cp.Name == "" {
			cp.Name = NormalizePageName(cp.Title)
		}
		s.pages[cp.ID] = cp
		s.pagesByName[cp.Name] = cp.ID
	}
	for _, b := range blocks {
		s.blocks[b.ID] = b.Clone()
	}
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventReset}})
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

func cloneProps(props map[string]string) map[string]string {
	if props == nil {
		return nil
	}
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return cp
}

func copyID(id *BlockID) *BlockID {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func sortPages(pages []*Page) {
	// Journal pages sort by name descending (newest day first), the rest
	// alphabetically by title.
	sort.Slice(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		if a.IsJournal != b.IsJournal {
			return !a.IsJournal
		}
		if a.IsJournal {
			return a.Name > b.Name
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}
