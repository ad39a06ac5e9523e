// Package store persists daemon state in SQLite: key/value app state (the
// last query), the dictionary list, bookmarks and history.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"aardd/internal/descriptor"
)

// KeyQuery is the app_state key holding the last completed query.
const KeyQuery = "query"

// Blob list names.
const (
	ListBookmarks = "bookmarks"
	ListHistory   = "history"
)

type Store struct {
	db *sql.DB
}

// SourceRecord is the persisted form of a dictionary descriptor.
type SourceRecord struct {
	ID     string
	Path   string
	Label  string
	Active bool
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_utc TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS blobs (
			list TEXT NOT NULL,
			id TEXT NOT NULL,
			content_url TEXT NOT NULL,
			source_id TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			blob_id INTEGER NOT NULL,
			fragment TEXT NOT NULL DEFAULT '',
			created_utc TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (list, content_url)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) SetAppState(key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(`
		INSERT INTO app_state (key, value, updated_utc)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_utc=excluded.updated_utc
	`, key, value, now); err != nil {
		return fmt.Errorf("set app state: %w", err)
	}
	return nil
}

func (s *Store) GetAppState(key string) (string, bool, error) {
	var value string
	row := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get app state: %w", err)
	}
	return value, true, nil
}

// SaveQuery persists the last completed query.
func (s *Store) SaveQuery(q string) error { return s.SetAppState(KeyQuery, q) }

// LoadQuery returns the persisted query, "" if none.
func (s *Store) LoadQuery() (string, error) {
	v, _, err := s.GetAppState(KeyQuery)
	return v, err
}

// SaveSources replaces the persisted dictionary list.
func (s *Store) SaveSources(recs []SourceRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save sources: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM sources`); err != nil {
		return fmt.Errorf("save sources: %w", err)
	}
	for i, r := range recs {
		if _, err := tx.Exec(`INSERT INTO sources (id, path, label, active, position) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Path, r.Label, boolToInt(r.Active), i); err != nil {
			return fmt.Errorf("save source %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// LoadSources returns the persisted dictionary list in order.
func (s *Store) LoadSources() ([]SourceRecord, error) {
	rows, err := s.db.Query(`SELECT id, path, label, active FROM sources ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	defer rows.Close()
	var out []SourceRecord
	for rows.Next() {
		var r SourceRecord
		var active int
		if err := rows.Scan(&r.ID, &r.Path, &r.Label, &active); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		r.Active = active != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}

// SaveBlobs replaces the persisted content of a bookmark or history list.
func (s *Store) SaveBlobs(list string, items []*descriptor.BlobDescriptor) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save %s: %w", list, err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM blobs WHERE list = ?`, list); err != nil {
		return fmt.Errorf("save %s: %w", list, err)
	}
	for i, b := range items {
		if _, err := tx.Exec(`
			INSERT INTO blobs (list, id, content_url, source_id, entry_key, blob_id, fragment, created_utc, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, list, b.ID, b.ContentURL, b.SourceID, b.Key, b.BlobID, b.Fragment,
			b.CreatedAt.UTC().Format(time.RFC3339Nano), i); err != nil {
			return fmt.Errorf("save %s entry: %w", list, err)
		}
	}
	return tx.Commit()
}

// LoadBlobs returns the persisted content of a bookmark or history list.
func (s *Store) LoadBlobs(list string) ([]*descriptor.BlobDescriptor, error) {
	rows, err := s.db.Query(`
		SELECT id, content_url, source_id, entry_key, blob_id, fragment, created_utc
		FROM blobs WHERE list = ? ORDER BY position
	`, list)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", list, err)
	}
	defer rows.Close()
	var out []*descriptor.BlobDescriptor
	for rows.Next() {
		b := &descriptor.BlobDescriptor{}
		var created string
		if err := rows.Scan(&b.ID, &b.ContentURL, &b.SourceID, &b.Key, &b.BlobID, &b.Fragment, &created); err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", list, err)
		}
		b.CreatedAt = parseTime(created)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", list, err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
