// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes implements the block-based note document engine.
package notes

import (
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Action is the kind of a replayable command.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
)

// BlockState is a snapshot of a block's mutable fields. Commands carry
// BlockStates so applying a command never depends on live store contents.
type BlockState struct {
	ParentID   *BlockID          `json:"parent_id,omitempty"`
	Order      string            `json:"order"`
	Type       BlockType         `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    string            `json:"content"`
	Indent     int               `json:"indent"`
	Collapsed  bool              `json:"collapsed"`
}

// clone returns a deep copy of the state.
func (st *BlockState) clone() *BlockState {
	if st == nil {
		return nil
	}
	cp := *st
	if st.ParentID != nil {
		pid := *st.ParentID
		cp.ParentID = &pid
	}
	if st.Properties != nil {
		cp.Properties = make(map[string]string, len(st.Properties))
		for k, v := range st.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}

// captureState snapshots the mutable fields of a block.
func captureState(b *Block) *BlockState {
	st := &BlockState{
		ParentID:  b.ParentID,
		Order:     b.Order,
		Type:      b.Type,
		Content:   b.Content,
		Indent:    b.Indent,
		Collapsed: b.Collapsed,
	}
	if b.Properties != nil {
		st.Properties = make(map[string]string, len(b.Properties))
		for k, v := range b.Properties {
			st.Properties[k] = v
		}
	}
	if b.ParentID != nil {
		pid := *b.ParentID
		st.ParentID = &pid
	}
	return st
}

// Command is one replayable mutation. The shape is a stable contract:
// collaborators that synthesize commands (the AI writer, undo/redo) must
// produce exactly this structure to stay history-compatible.
//
//   - create: Data is the full initial state.
//   - update: Data is the state after, Previous the state before.
//   - delete: Data is the last state before removal.
//   - move:   Data carries the new parent/order/indent, Previous the old.
type Command struct {
	Action   Action      `json:"action"`
	BlockID  BlockID     `json:"block_id"`
	PageID   PageID      `json:"page_id"`
	Data     *BlockState `json:"data,omitempty"`
	Previous *BlockState `json:"previous_data,omitempty"`
}

// invert returns the command that undoes cmd.
func (cmd Command) invert() Command {
	inv := Command{BlockID: cmd.BlockID, PageID: cmd.PageID}
	switch cmd.Action {
	case ActionCreate:
		inv.Action = ActionDelete
		inv.Data = cmd.Data.clone()
	case ActionDelete:
		inv.Action = ActionCreate
		inv.Data = cmd.Data.clone()
	case ActionUpdate:
		inv.Action = ActionUpdate
		inv.Data = cmd.Previous.clone()
		inv.Previous = cmd.Data.clone()
	case ActionMove:
		inv.Action = ActionMove
		inv.Data = cmd.Previous.clone()
		inv.Previous = cmd.Data.clone()
	}
	return inv
}

// Transaction pairs the commands that were applied with the commands that
// undo them. Inverse commands are listed in the order they must run.
type Transaction struct {
	Forward []Command
	Inverse []Command
}

// txBuilder accumulates a transaction. Forward commands append; their
// inverses prepend, so composite operations (delete with child reparenting)
// undo in reverse order.
type txBuilder struct {
	fwd []Command
	inv []Command
}

func (t *txBuilder) add(cmd Command) {
	t.fwd = append(t.fwd, cmd)
	t.inv = append([]Command{cmd.invert()}, t.inv...)
}

func (t *txBuilder) empty() bool { return len(t.fwd) == 0 }

func (t *txBuilder) tx() *Transaction {
	return &Transaction{Forward: t.fwd, Inverse: t.inv}
}

// =============================================================================
// HISTORY
// =============================================================================

// DefaultQuietPeriod is how long typing must pause before the coalesced
// edit becomes a transaction.
const DefaultQuietPeriod = 500 * time.Millisecond

// History records a forward/inverse transaction for every mutation and
// drives undo/redo. Discrete structural operations push one transaction
// each; free-text typing is coalesced so a burst of keystrokes undoes as a
// single step.
type History struct {
	store *Store

	mu      sync.Mutex
	undo    []*Transaction
	redo    []*Transaction
	quiet   time.Duration
	pending *pendingEdit
	timer   *time.Timer

	// applying suppresses recording while undo/redo replays commands
	// through the store.
	applying atomic.Bool
}

// pendingEdit is an in-flight coalesced typing burst. before is the state
// snapshotted at the first keystroke of the quiet period; after tracks the
// latest keystroke.
type pendingEdit struct {
	blockID BlockID
	pageID  PageID
	before  *BlockState
	after   *BlockState
}

// NewHistory creates a history attached to the store. quiet <= 0 selects
// the default quiet period.
func NewHistory(store *Store, quiet time.Duration) *History {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	h := &History{store: store, quiet: quiet}
	store.attachHistory(h)
	return h
}

// record pushes a discrete transaction. Any pending typing burst is
// committed first so undo order matches edit order. New edits invalidate
// redo history.
func (h *History) record(tx *Transaction) {
	if h.applying.Load() {
		return
	}
	h.FlushTyping()
	h.mu.Lock()
	h.undo = append(h.undo, tx)
	h.redo = nil
	h.mu.Unlock()
}

// recordTyping folds one content write into the current typing burst. The
// first write in a quiet period snapshots the pre-edit state; every write
// resets the quiet-period timer. A write targeting a different block
// commits the previous burst immediately.
func (h *History) recordTyping(blockID BlockID, pageID PageID, before, after *BlockState) {
	if h.applying.Load() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pending != nil && h.pending.blockID != blockID {
		h.flushLocked()
	}
	if h.pending == nil {
		h.pending = &pendingEdit{
			blockID: blockID,
			pageID:  pageID,
			before:  before.clone(),
		}
	}
	h.pending.after = after.clone()

	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.quiet, h.FlushTyping)
}

// FlushTyping commits the pending typing burst, if any, as one transaction.
func (h *History) FlushTyping() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushLocked()
}

// DiscardTyping drops the pending burst and cancels its timer. Used on
// teardown so the timer never fires against a gone block.
func (h *History) DiscardTyping() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.pending = nil
}

func (h *History) flushLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	p := h.pending
	h.pending = nil
	if p == nil {
		return
	}
	cmd := Command{
		Action:   ActionUpdate,
		BlockID:  p.blockID,
		PageID:   p.pageID,
		Data:     p.after,
		Previous: p.before,
	}
	h.undo = append(h.undo, &Transaction{
		Forward: []Command{cmd},
		Inverse: []Command{cmd.invert()},
	})
	h.redo = nil
}

// =============================================================================
// UNDO / REDO
// =============================================================================

// Undo reverts the most recent transaction. Returns false when there is
// nothing to undo.
func (h *History) Undo() bool {
	h.FlushTyping()

	h.mu.Lock()
	n := len(h.undo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	tx := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.mu.Unlock()

	h.applying.Store(true)
	h.store.ApplyCommands(tx.Inverse)
	h.applying.Store(false)

	h.mu.Lock()
	h.redo = append(h.redo, tx)
	h.mu.Unlock()
	return true
}

// Redo re-applies the most recently undone transaction. Returns false when
// the redo stack is empty. A typing burst still inside its quiet period is
// a new edit: it commits here and invalidates the redo stack, exactly as
// it would once its timer fired.
func (h *History) Redo() bool {
	h.mu.Lock()
	if h.pending != nil {
		h.flushLocked()
		h.mu.Unlock()
		return false
	}
	n := len(h.redo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	tx := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.mu.Unlock()

	h.applying.Store(true)
	h.store.ApplyCommands(tx.Forward)
	h.applying.Store(false)

	h.mu.Lock()
	h.undo = append(h.undo, tx)
	h.mu.Unlock()
	return true
}

// CanUndo reports whether an undo step exists (including a pending burst).
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0 || h.pending != nil
}

// CanRedo reports whether a redo step exists. A pending typing burst
// makes the undone steps unreachable, so it reports false.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0 && h.pending == nil
}

// Depth returns the undo and redo stack sizes.
func (h *History) Depth() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}
