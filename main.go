// skald - block-based notes with an AI writing partner, in the terminal.
//
// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skaldhq/skald-tui/internal/cli"
	"github.com/skaldhq/skald-tui/internal/config"
	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/ollama"
	"github.com/skaldhq/skald-tui/internal/session"
	"github.com/skaldhq/skald-tui/internal/storage"
	"github.com/skaldhq/skald-tui/internal/ui/editor"
	"github.com/skaldhq/skald-tui/internal/ui/styles"
	"github.com/skaldhq/skald-tui/internal/writer"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdPages:
		err = cli.HandlePages(args)
	case cli.CmdExport:
		err = cli.HandleExport(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdDoctor:
		err = cli.HandleDoctor(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.PrintHelp()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "skald:", err)
		os.Exit(1)
	}
}

// runTUI wires the full editor stack and runs the Bubble Tea program.
func runTUI(args cli.Args) error {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	store, db, err := cli.OpenNotes(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	quiet := time.Duration(cfg.Notes.QuietPeriodMs) * time.Millisecond
	history := notes.NewHistory(store, quiet)

	// Session: every store mutation marks dirty; autosave persists a
	// snapshot back into sqlite.
	sess := session.NewManager(session.Config{
		AutoSaveEnabled:  cfg.Notes.AutoSaveSecs > 0,
		AutoSaveInterval: time.Duration(cfg.Notes.AutoSaveSecs) * time.Second,
	})
	sess.SetAutoSaveCallback(func() error {
		pages, blocks := store.Snapshot()
		return db.Persist(pages, blocks)
	})
	sess.Attach(store)
	defer sess.Close()

	// Another process editing the database reloads the store. Writes we
	// made ourselves within the debounce window are skipped.
	watcher, err := storage.WatchFile(db.Path(), 500*time.Millisecond, func() {
		if time.Since(db.LastSaved()) < 2*time.Second {
			return
		}
		pages, blocks, loadErr := db.LoadAll()
		if loadErr != nil {
			return
		}
		store.Load(pages, blocks)
	})
	if err == nil {
		defer watcher.Close()
	}

	m := editor.New(editor.Options{
		Store:        store,
		History:      history,
		Session:      sess,
		Theme:        styles.NewTheme(cfg.UI.Theme),
		ExportDir:    cfg.Export.Dir,
		WriterSource: writerSource(cfg),
		WriterConfig: writer.Config{
			BatchSize:       cfg.Writer.BatchSize,
			MaxFPS:          30,
			TokensPerSecond: cfg.Writer.TokensPerSecond,
		},
	})
	defer m.Close()

	if args.PageName != "" {
		page := store.ResolvePage(args.PageName)
		m.OpenPage(page.ID)
	} else {
		m.OpenJournal()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Final save regardless of dirty-state races during shutdown.
	pages, blocks := store.Snapshot()
	return db.Persist(pages, blocks)
}

// writerSource builds the AI token source from config. A missing
// endpoint disables the writer rather than failing startup.
func writerSource(cfg *config.Config) writer.Source {
	if cfg.Writer.Endpoint == "" || cfg.Writer.Model == "" {
		return nil
	}

	clientCfg := ollama.DefaultClientConfig()
	clientCfg.BaseURL = cfg.Writer.Endpoint

	return &writer.OllamaSource{
		Client: ollama.NewClientWithConfig(clientCfg),
		Model:  cfg.Writer.Model,
		System: "You are a writing partner inside a note-taking app. Continue or answer the user's note directly, in plain prose, without preamble.",
	}
}
