// Copyright (c) 2025 Skald Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/skaldhq/skald-tui/internal/notes"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("note store is closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

const (
	// SchemaVersion tracks the database schema for migrations.
	SchemaVersion = 1
)

const schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS pages (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    name TEXT NOT NULL,
    is_journal INTEGER NOT NULL,
    created_at INTEGER NOT NULL,  -- Unix nanoseconds
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pages_name ON pages(name);

-- "order" is an SQL keyword, hence ord.
CREATE TABLE IF NOT EXISTS blocks (
    id TEXT PRIMARY KEY,
    page_id TEXT NOT NULL,
    parent_id TEXT,
    ord TEXT NOT NULL,
    type TEXT NOT NULL,
    properties TEXT,              -- JSON object, NULL when empty
    content TEXT NOT NULL,
    indent INTEGER NOT NULL,
    collapsed INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY(page_id) REFERENCES pages(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_blocks_page ON blocks(page_id);
CREATE INDEX IF NOT EXISTS idx_blocks_parent ON blocks(parent_id);
`

// =============================================================================
// NOTE STORE
// =============================================================================

// NoteStore is the SQLite persistence collaborator.
type NoteStore struct {
	db   *sql.DB
	path string

	mu        sync.Mutex
	closed    bool
	lastSaved time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*NoteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &NoteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *NoteStore) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)",
		fmt.Sprint(SchemaVersion),
	)
	return err
}

// Path returns the database file path.
func (s *NoteStore) Path() string {
	return s.path
}

// LastSaved returns the time of the last successful Persist. Used to
// tell our own database writes apart from external replacement.
func (s *NoteStore) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Close closes the store. Further calls error with ErrClosed.
func (s *NoteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// =============================================================================
// PERSIST
// =============================================================================

// Persist writes a full snapshot of all pages and blocks in one
// transaction, replacing the previous snapshot entirely.
func (s *NoteStore) Persist(pages []*notes.Page, blocks []*notes.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM blocks"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := tx.Exec("DELETE FROM pages"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	pageStmt, err := tx.Prepare(
		"INSERT INTO pages (id, title, name, is_journal, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer pageStmt.Close()

	for _, p := range pages {
		if _, err := pageStmt.Exec(
			string(p.ID), p.Title, p.Name, boolToInt(p.IsJournal),
			p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	blockStmt, err := tx.Prepare(
		"INSERT INTO blocks (id, page_id, parent_id, ord, type, properties, content, indent, collapsed, created_at, updated_at) " +
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer blockStmt.Close()

	for _, b := range blocks {
		props, err := encodeProps(b.Properties)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		var parent sql.NullString
		if b.ParentID != nil {
			parent = sql.NullString{String: string(*b.ParentID), Valid: true}
		}
		if _, err := blockStmt.Exec(
			string(b.ID), string(b.PageID), parent, b.Order, string(b.Type),
			props, b.Content, b.Indent, boolToInt(b.Collapsed),
			b.CreatedAt.UnixNano(), b.UpdatedAt.UnixNano(),
		); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	s.lastSaved = time.Now()
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadAll reads the full snapshot. An empty database returns empty
// slices and no error.
func (s *NoteStore) LoadAll() ([]*notes.Page, []*notes.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrClosed
	}

	pages, err := s.loadPages()
	if err != nil {
		return nil, nil, err
	}
	blocks, err := s.loadBlocks()
	if err != nil {
		return nil, nil, err
	}
	return pages, blocks, nil
}

func (s *NoteStore) loadPages() ([]*notes.Page, error) {
	rows, err := s.db.Query(
		"SELECT id, title, name, is_journal, created_at, updated_at FROM pages")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var pages []*notes.Page
	for rows.Next() {
		var (
			id, title, name      string
			isJournal            int
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&id, &title, &name, &isJournal, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		pages = append(pages, &notes.Page{
			ID:        notes.PageID(id),
			Title:     title,
			Name:      name,
			IsJournal: isJournal != 0,
			CreatedAt: time.Unix(0, createdAt),
			UpdatedAt: time.Unix(0, updatedAt),
		})
	}
	return pages, rows.Err()
}

func (s *NoteStore) loadBlocks() ([]*notes.Block, error) {
	rows, err := s.db.Query(
		"SELECT id, page_id, parent_id, ord, type, properties, content, indent, collapsed, created_at, updated_at FROM blocks")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var blocks []*notes.Block
	for rows.Next() {
		var (
			id, pageID, ord, typ, content string
			parent                        sql.NullString
			props                         sql.NullString
			indent, collapsed             int
			createdAt, updatedAt          int64
		)
		if err := rows.Scan(&id, &pageID, &parent, &ord, &typ, &props, &content,
			&indent, &collapsed, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}

		b := &notes.Block{
			ID:        notes.BlockID(id),
			PageID:    notes.PageID(pageID),
			Order:     ord,
			Type:      notes.BlockType(typ),
			Content:   content,
			Indent:    indent,
			Collapsed: collapsed != 0,
			CreatedAt: time.Unix(0, createdAt),
			UpdatedAt: time.Unix(0, updatedAt),
		}
		if parent.Valid {
			pid := notes.BlockID(parent.String)
			b.ParentID = &pid
		}
		if props.Valid && props.String != "" {
			m := make(map[string]string)
			if err := json.Unmarshal([]byte(props.String), &m); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
			}
			b.Properties = m
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func encodeProps(props map[string]string) (sql.NullString, error) {
	if len(props) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
