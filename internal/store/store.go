// Package store handles SQLite persistence for the knowledge base: objects,
// classes, properties, the property change log, files, directories, the link
// graph and the full-text search index.
//
// The link rows (links, dangling_links) and the search index are engine
// state: they are only ever written by the reconciliation and sync code in
// this package, inside the same transaction as the triggering write.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite database handle.
type Store struct {
	db *sql.DB
}

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// nowMillis returns the current Unix time in milliseconds. Overridable in
// tests to get stable timestamps.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// foreign_keys is a per-connection pragma; a single pooled connection
	// keeps it (and transaction serialization) simple.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each pool connection would get its own empty :memory: database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// initialize creates the database schema.
func (s *Store) initialize() error {
	schema := `
		-- WAL for concurrent readers; FKs enforce the cascade rules below.
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			hash TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			data BLOB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS directories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			icon_emoji TEXT NOT NULL DEFAULT '',
			cover_id INTEGER REFERENCES files(id) ON DELETE SET NULL,
			parent_id INTEGER REFERENCES directories(id) ON DELETE CASCADE,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS classes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			icon_emoji TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS class_props (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			class_id INTEGER NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			type INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			select_options TEXT NOT NULL DEFAULT '',
			UNIQUE (class_id, title)
		);

		CREATE TABLE IF NOT EXISTS objects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE CHECK (title <> ''),
			class_id INTEGER NOT NULL REFERENCES classes(id),
			directory_id INTEGER REFERENCES directories(id) ON DELETE SET NULL,
			icon_emoji TEXT NOT NULL DEFAULT '',
			cover_id INTEGER REFERENCES files(id) ON DELETE SET NULL,
			created_at INTEGER NOT NULL,
			modified_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS properties (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			class_prop_id INTEGER NOT NULL REFERENCES class_props(id) ON DELETE CASCADE,
			class_prop_title TEXT NOT NULL,
			class_prop_type INTEGER NOT NULL,
			object_id INTEGER NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			value_text TEXT,
			value_file INTEGER REFERENCES files(id) ON DELETE SET NULL,
			value_bool INTEGER,
			value_select TEXT,
			value_link INTEGER REFERENCES objects(id) ON DELETE SET NULL,
			value_links TEXT,
			UNIQUE (object_id, class_prop_id)
		);

		-- Append-only. prop_id goes null when the property is deleted so the
		-- history survives.
		CREATE TABLE IF NOT EXISTS property_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			object_id INTEGER NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			prop_id INTEGER REFERENCES properties(id) ON DELETE SET NULL,
			prop_title TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			value_text TEXT,
			value_file INTEGER,
			value_bool INTEGER,
			value_select TEXT,
			value_link INTEGER,
			value_links TEXT
		);

		-- Resolved references. Deleting the target cascades the row away;
		-- demoting to a dangling link on target deletion was considered and
		-- rejected (the reference is lost, matching the cascade semantics).
		CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_object_id INTEGER NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			from_property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			to_object_id INTEGER NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			UNIQUE (from_property_id, to_object_id)
		);

		-- Unresolved references, addressed by the title they hope to find.
		CREATE TABLE IF NOT EXISTS dangling_links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_object_id INTEGER NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
			from_property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			to_object_title TEXT NOT NULL,
			UNIQUE (from_property_id, to_object_title)
		);

		CREATE INDEX IF NOT EXISTS idx_objects_class ON objects(class_id);
		CREATE INDEX IF NOT EXISTS idx_objects_directory ON objects(directory_id);
		CREATE INDEX IF NOT EXISTS idx_properties_object ON properties(object_id);
		CREATE INDEX IF NOT EXISTS idx_changes_prop ON property_changes(prop_id);
		CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_object_id);
		CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_property_id);
		CREATE INDEX IF NOT EXISTS idx_dangling_title ON dangling_links(to_object_title);
		CREATE INDEX IF NOT EXISTS idx_dangling_from ON dangling_links(from_property_id);

		-- Full-text index over flattened rich-text property values, kept in
		-- lockstep with property writes by the sync code in search.go.
		CREATE VIRTUAL TABLE IF NOT EXISTS properties_fts USING fts5(
			property_id UNINDEXED,
			object_id UNINDEXED,
			prop_title UNINDEXED,
			content,
			tokenize='porter unicode61'
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error. Every external trigger (object create/edit/delete, property save)
// goes through here so reconciliation and index sync commit atomically with
// the write that caused them.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats returns row counts for the stats command.
type Stats struct {
	Objects       int `json:"objects"`
	Classes       int `json:"classes"`
	Properties    int `json:"properties"`
	Links         int `json:"links"`
	DanglingLinks int `json:"dangling_links"`
	Files         int `json:"files"`
}

// Stats counts the main tables.
func (s *Store) Stats() (*Stats, error) {
	var stats Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"objects", &stats.Objects},
		{"classes", &stats.Classes},
		{"properties", &stats.Properties},
		{"links", &stats.Links},
		{"dangling_links", &stats.DanglingLinks},
		{"files", &stats.Files},
	}
	for _, c := range counts {
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}
