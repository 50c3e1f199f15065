// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - non-TUI command handlers for skald.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skaldhq/skald-tui/internal/config"
	"github.com/skaldhq/skald-tui/internal/export"
	"github.com/skaldhq/skald-tui/internal/notes"
	"github.com/skaldhq/skald-tui/internal/ollama"
	"github.com/skaldhq/skald-tui/internal/storage"
)

// NotesDBName is the sqlite file name inside the data directory.
const NotesDBName = "notes.db"

// LoadConfig loads configuration with CLI flag overrides applied.
func LoadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.DataDir != "" {
		cfg.Notes.DataDir = args.DataDir
	}
	if args.Theme != "" {
		cfg.UI.Theme = args.Theme
	}
	return cfg, nil
}

// OpenNotes opens the note database and loads its contents into a
// fresh in-memory store. The caller owns closing the returned
// NoteStore.
func OpenNotes(cfg *config.Config) (*notes.Store, *storage.NoteStore, error) {
	if err := os.MkdirAll(cfg.Notes.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := storage.Open(filepath.Join(cfg.Notes.DataDir, NotesDBName))
	if err != nil {
		return nil, nil, err
	}

	pages, blocks, err := db.LoadAll()
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	store := notes.NewStore()
	store.Load(pages, blocks)
	return store, db, nil
}

// HandlePages lists every page with its block count.
func HandlePages(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	store, db, err := OpenNotes(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	pages := store.Pages()
	if len(pages) == 0 {
		fmt.Println("no pages yet - run skald to start writing")
		return nil
	}

	for _, p := range pages {
		count := len(store.Blocks(p.ID))
		badge := ""
		if p.IsJournal {
			badge = " [journal]"
		}
		fmt.Printf("%-40s %4d blocks%s\n", p.Title, count, badge)
	}
	return nil
}

// HandleExport exports one page to the configured export directory.
func HandleExport(args Args) error {
	if args.PageName == "" {
		return fmt.Errorf("export: page name required")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	store, db, err := OpenNotes(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	page, ok := store.PageByName(notes.NormalizePageName(args.PageName))
	if !ok {
		return fmt.Errorf("export: no page named %q", args.PageName)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Export.Dir

	var exporter export.Exporter
	switch args.Format {
	case "json":
		exporter = export.NewJSONExporter()
	case "markdown", "":
		exporter = export.NewMarkdownExporter(opts)
	default:
		return fmt.Errorf("export: unknown format %q", args.Format)
	}

	path, err := export.ExportToFile(page, store.Blocks(page.ID), exporter, opts)
	if err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Println("exported to", path)
	}
	return nil
}

// HandleConfig prints the active configuration.
func HandleConfig(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	path, _ := config.ConfigPath()
	fmt.Println("config file: ", path)
	fmt.Println("data dir:    ", cfg.Notes.DataDir)
	fmt.Println("export dir:  ", cfg.Export.Dir)
	fmt.Println("quiet period:", cfg.Notes.QuietPeriodMs, "ms")
	fmt.Println("autosave:    ", cfg.Notes.AutoSaveSecs, "s")
	fmt.Println("ollama:      ", cfg.Writer.Endpoint)
	fmt.Println("model:       ", cfg.Writer.Model)
	fmt.Println("theme:       ", cfg.UI.Theme)
	return nil
}

// HandleDoctor checks the data store and the Ollama connection.
func HandleDoctor(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	fmt.Println("skald doctor")
	fmt.Println()

	// Data store
	store, db, err := OpenNotes(cfg)
	if err != nil {
		fmt.Println("[X] note store:", err)
	} else {
		fmt.Printf("[OK] note store: %d pages at %s\n", len(store.Pages()), db.Path())
		db.Close()
	}

	// Ollama
	clientCfg := ollama.DefaultClientConfig()
	clientCfg.BaseURL = cfg.Writer.Endpoint
	client := ollama.NewClientWithConfig(clientCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Println("[!] ollama:", err)
		fmt.Println("    the editor works without it; AI writing is disabled")
		return nil
	}
	fmt.Println("[OK] ollama reachable at", cfg.Writer.Endpoint)

	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Println("[!] list models:", err)
		return nil
	}

	found := false
	for _, m := range models {
		if m.Name == cfg.Writer.Model {
			found = true
			break
		}
	}
	if found {
		fmt.Println("[OK] model available:", cfg.Writer.Model)
	} else {
		fmt.Printf("[!] model %q not pulled (%d others available)\n", cfg.Writer.Model, len(models))
	}
	return nil
}

// HandleVersion prints build information.
func HandleVersion() {
	fmt.Printf("skald %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
