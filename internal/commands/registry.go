// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// CommandKind distinguishes type-change commands from the two structural
// commands that open a follow-up page picker.
type CommandKind int

const (
	// KindChangeType converts the block to Command.Type with
	// Command.Properties merged in.
	KindChangeType CommandKind = iota

	// KindPageLink inserts an open "[[" and hands off to the link picker.
	KindPageLink

	// KindEmbedPage converts the block to an embed and hands off to the
	// link picker to choose the target page.
	KindEmbedPage
)

// Command is one entry in the "/" menu.
type Command struct {
	// Name is the label shown in the menu (e.g. "Heading 2").
	Name string

	// Aliases are short names matched during filtering (e.g. "h2").
	Aliases []string

	// Description is shown alongside the name.
	Description string

	// Kind selects commit behavior.
	Kind CommandKind

	// Type is the block type applied on commit (KindChangeType only).
	Type notes.BlockType

	// Properties are merged into the block on commit (KindChangeType only).
	Properties map[string]string
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all block-type commands in menu order.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands = append(r.commands, cmd)
	r.byName[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.byName[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	return r.byName[name]
}

// All returns all registered commands in menu order.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, len(r.commands))
	copy(cmds, r.commands)
	return cmds
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "Text",
		Aliases:     []string{"p", "paragraph"},
		Description: "Plain paragraph",
		Type:        notes.TypeParagraph,
	})

	r.Register(&Command{
		Name:        "Heading 1",
		Aliases:     []string{"h1"},
		Description: "Large section heading",
		Type:        notes.TypeHeading,
		Properties:  map[string]string{notes.PropLevel: "1"},
	})

	r.Register(&Command{
		Name:        "Heading 2",
		Aliases:     []string{"h2"},
		Description: "Medium section heading",
		Type:        notes.TypeHeading,
		Properties:  map[string]string{notes.PropLevel: "2"},
	})

	r.Register(&Command{
		Name:        "Heading 3",
		Aliases:     []string{"h3"},
		Description: "Small section heading",
		Type:        notes.TypeHeading,
		Properties:  map[string]string{notes.PropLevel: "3"},
	})

	r.Register(&Command{
		Name:        "Bulleted list",
		Aliases:     []string{"ul", "bullet"},
		Description: "Simple bulleted list item",
		Type:        notes.TypeListItem,
	})

	r.Register(&Command{
		Name:        "Numbered list",
		Aliases:     []string{"ol", "numbered"},
		Description: "List item with numbering",
		Type:        notes.TypeNumberedItem,
	})

	r.Register(&Command{
		Name:        "To-do",
		Aliases:     []string{"todo", "task", "checkbox"},
		Description: "Task with a checkbox",
		Type:        notes.TypeTodo,
		Properties:  map[string]string{notes.PropChecked: "false"},
	})

	r.Register(&Command{
		Name:        "Quote",
		Aliases:     []string{"blockquote"},
		Description: "Quoted text",
		Type:        notes.TypeQuote,
	})

	r.Register(&Command{
		Name:        "Callout",
		Aliases:     []string{"info", "note"},
		Description: "Highlighted callout box",
		Type:        notes.TypeCallout,
		Properties:  map[string]string{notes.PropKind: "info"},
	})

	r.Register(&Command{
		Name:        "Code",
		Aliases:     []string{"codeblock", "fence"},
		Description: "Code block with highlighting",
		Type:        notes.TypeCode,
	})

	r.Register(&Command{
		Name:        "Math",
		Aliases:     []string{"tex", "latex", "equation"},
		Description: "Math block",
		Type:        notes.TypeMath,
	})

	r.Register(&Command{
		Name:        "Toggle",
		Aliases:     []string{"collapse"},
		Description: "Collapsible toggle block",
		Type:        notes.TypeToggle,
	})

	r.Register(&Command{
		Name:        "Divider",
		Aliases:     []string{"hr", "rule"},
		Description: "Horizontal divider",
		Type:        notes.TypeDivider,
	})

	r.Register(&Command{
		Name:        "Page link",
		Aliases:     []string{"link"},
		Description: "Link to another page",
		Kind:        KindPageLink,
	})

	r.Register(&Command{
		Name:        "Embed page",
		Aliases:     []string{"embed"},
		Description: "Embed another page inline",
		Kind:        KindEmbedPage,
		Type:        notes.TypeEmbed,
	})
}
