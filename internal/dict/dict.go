// Package dict implements dictionary sources backed by SQLite files and a
// multi-source Engine that finds entries across an ordered set of sources.
//
// A dictionary file (*.dictdb) is a SQLite database with two tables:
//
//   - meta(key, value): at least "id"; optionally "label" and "uri".
//   - entries(id, key, fragment, content_type, content).
//
// The Engine owns matching and ranking. Callers hand it a query and an ordered
// slice of sources and receive a lazy Iterator.
package dict

import (
	"context"
	"errors"
)

// Strength is an ordinal that controls how loosely a query may match a key.
// Higher values are stricter.
type Strength int

const (
	Primary Strength = iota
	Secondary
	Tertiary
	Quaternary
	Identical
)

func (s Strength) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	case Quaternary:
		return "quaternary"
	case Identical:
		return "identical"
	default:
		return "unknown"
	}
}

// Entry is a single match: a key in one source pointing at one blob.
type Entry struct {
	SourceID string
	BlobID   int64
	Key      string
	Fragment string
}

// Content is the payload of a blob.
type Content struct {
	Type string
	Data []byte
}

// Info describes a dictionary file without keeping it open.
type Info struct {
	ID    string
	Label string
	URI   string
	Path  string
}

// Source is an open dictionary.
type Source interface {
	ID() string
	URI() string
	Label() string
	// Match returns up to limit entries whose key matches query at exactly
	// the given strength level.
	Match(ctx context.Context, query string, level Strength, limit int) ([]Entry, error)
	// Content loads the blob referenced by an entry.
	Content(ctx context.Context, blobID int64) (Content, error)
	// Lookup returns entries whose key is exactly key.
	Lookup(ctx context.Context, key string) ([]Entry, error)
	Random(ctx context.Context) (Entry, error)
	Close() error
}

var (
	// ErrNotFound is returned when a blob or key does not exist.
	ErrNotFound = errors.New("dict: not found")
	// ErrEmpty is returned by FindRandom when no source has entries.
	ErrEmpty = errors.New("dict: no entries")
)
