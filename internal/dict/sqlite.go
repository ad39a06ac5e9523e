package dict

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// FileExt is the extension used for dictionary files.
const FileExt = ".dictdb"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL,
		fragment TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT 'text/plain',
		content BLOB NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS entries_key ON entries(key);`,
	`CREATE INDEX IF NOT EXISTS entries_key_nocase ON entries(key COLLATE NOCASE);`,
}

type sqliteSource struct {
	db   *sql.DB
	info Info
}

// OpenFile opens the dictionary at path. The file must already exist. A
// dictionary without an id gets one derived from its URI.
func OpenFile(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	// query_only is applied per connection through the DSN.
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	info, err := readMeta(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	info.Path = path
	if info.URI == "" {
		info.URI = "file://" + path
	}
	if info.ID == "" {
		info.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(info.URI)).String()
	}
	return &sqliteSource{db: db, info: info}, nil
}

// ReadInfo opens the file just long enough to read its metadata.
func ReadInfo(path string) (Info, error) {
	s, err := OpenFile(path)
	if err != nil {
		return Info{}, err
	}
	defer s.Close()
	return s.(*sqliteSource).info, nil
}

func readMeta(db *sql.DB) (Info, error) {
	rows, err := db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return Info{}, fmt.Errorf("read meta: %w", err)
	}
	defer rows.Close()
	var info Info
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Info{}, fmt.Errorf("scan meta: %w", err)
		}
		switch k {
		case "id":
			info.ID = v
		case "label":
			info.Label = v
		case "uri":
			info.URI = v
		}
	}
	if err := rows.Err(); err != nil {
		return Info{}, fmt.Errorf("iterate meta: %w", err)
	}
	return info, nil
}

func (s *sqliteSource) ID() string    { return s.info.ID }
func (s *sqliteSource) URI() string   { return s.info.URI }
func (s *sqliteSource) Label() string { return s.info.Label }
func (s *sqliteSource) Close() error  { return s.db.Close() }

func (s *sqliteSource) Match(ctx context.Context, query string, level Strength, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	var (
		where string
		args  []any
	)
	switch level {
	case Identical:
		where, args = `key = ?`, []any{query}
	case Quaternary:
		where, args = `key = ? COLLATE NOCASE`, []any{query}
	case Tertiary:
		where, args = `substr(key, 1, ?) = ?`, []any{utf8.RuneCountInString(query), query}
	case Secondary:
		where, args = `key LIKE ? ESCAPE '\'`, []any{escapeLike(query) + "%"}
	case Primary:
		where, args = `key LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(query) + "%"}
	default:
		return nil, fmt.Errorf("unknown strength %d", level)
	}
	args = append(args, limit)
	return s.query(ctx, `SELECT id, key, fragment FROM entries WHERE `+where+` ORDER BY key, id LIMIT ?`, args...)
}

func (s *sqliteSource) Lookup(ctx context.Context, key string) ([]Entry, error) {
	return s.query(ctx, `SELECT id, key, fragment FROM entries WHERE key = ? ORDER BY id`, key)
}

func (s *sqliteSource) Random(ctx context.Context) (Entry, error) {
	out, err := s.query(ctx, `SELECT id, key, fragment FROM entries ORDER BY random() LIMIT 1`)
	if err != nil {
		return Entry{}, err
	}
	if len(out) == 0 {
		return Entry{}, ErrNotFound
	}
	return out[0], nil
}

func (s *sqliteSource) Content(ctx context.Context, blobID int64) (Content, error) {
	var c Content
	row := s.db.QueryRowContext(ctx, `SELECT content_type, content FROM entries WHERE id = ?`, blobID)
	if err := row.Scan(&c.Type, &c.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, ErrNotFound
		}
		return Content{}, fmt.Errorf("load blob %d: %w", blobID, err)
	}
	return c, nil
}

func (s *sqliteSource) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.info.ID, err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e := Entry{SourceID: s.info.ID}
		if err := rows.Scan(&e.BlobID, &e.Key, &e.Fragment); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Writer builds a new dictionary file.
type Writer struct {
	db *sql.DB
	tx *sql.Tx
}

// Create creates a dictionary file at path with the given metadata. Any
// existing file is replaced.
func Create(path string, info Info) (*Writer, error) {
	if info.ID == "" {
		return nil, errors.New("create dictionary: empty id")
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("create dictionary: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("create dictionary: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create dictionary schema: %w", err)
		}
	}
	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("begin: %w", err)
	}
	meta := map[string]string{"id": info.ID, "label": info.Label, "uri": info.URI}
	for k, v := range meta {
		if v == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			_ = tx.Rollback()
			_ = db.Close()
			return nil, fmt.Errorf("write meta %s: %w", k, err)
		}
	}
	return &Writer{db: db, tx: tx}, nil
}

// Add appends an entry and returns its blob id.
func (w *Writer) Add(key, contentType string, content []byte, fragment string) (int64, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	res, err := w.tx.Exec(`INSERT INTO entries (key, fragment, content_type, content) VALUES (?, ?, ?, ?)`,
		key, fragment, contentType, content)
	if err != nil {
		return 0, fmt.Errorf("add %q: %w", key, err)
	}
	return res.LastInsertId()
}

// Close commits pending entries and closes the file.
func (w *Writer) Close() error {
	if err := w.tx.Commit(); err != nil {
		_ = w.db.Close()
		return fmt.Errorf("commit: %w", err)
	}
	return w.db.Close()
}
