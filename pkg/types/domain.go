package types

import "time"

// Entry is one matched dictionary entry.
type Entry struct {
	// Id of the dictionary holding the entry.
	// example: wordnet-3.1
	SourceID string `json:"source_id" example:"wordnet-3.1"`
	// Headword.
	// example: serendipity
	Key string `json:"key" example:"serendipity"`
	// Blob id within the dictionary.
	// example: 4711
	BlobID int64 `json:"blob_id" example:"4711"`
	// Optional anchor within the content.
	Fragment string `json:"fragment,omitempty"`
	// Server-relative content path.
	// example: /content/wordnet-3.1/serendipity?blob=4711
	ContentURL string `json:"content_url" example:"/content/wordnet-3.1/serendipity?blob=4711"`
	// Absolute content URL on the bound server.
	// example: http://127.0.0.1:8013/content/wordnet-3.1/serendipity?blob=4711
	URL string `json:"url,omitempty" example:"http://127.0.0.1:8013/content/wordnet-3.1/serendipity?blob=4711"`
}

// Source describes a dictionary in the source set.
type Source struct {
	// Stable dictionary id.
	// example: wordnet-3.1
	ID string `json:"id" example:"wordnet-3.1"`
	// Human-friendly name.
	// example: WordNet 3.1
	Label string `json:"label" example:"WordNet 3.1"`
	// Absolute path of the dictionary file.
	// example: /home/user/dictionaries/wordnet.dictdb
	Path string `json:"path" example:"/home/user/dictionaries/wordnet.dictdb"`
	// Whether the dictionary takes part in general lookups.
	Active bool `json:"active" example:"true"`
	// Whether the last rebuild opened it.
	Open bool `json:"open" example:"true"`
	// Error of the last failed open, if any.
	Error string `json:"error,omitempty"`
}

// Bookmark is a bookmark or history entry.
type Bookmark struct {
	// Unique id.
	// example: 0d9c3c3e-1f0b-4a77-9a3e-6f6f1c2b9a10
	ID string `json:"id" example:"0d9c3c3e-1f0b-4a77-9a3e-6f6f1c2b9a10"`
	// Server-relative content path; identity of the entry.
	// example: /content/wordnet-3.1/serendipity?blob=4711
	ContentURL string `json:"content_url" example:"/content/wordnet-3.1/serendipity?blob=4711"`
	SourceID   string `json:"source_id" example:"wordnet-3.1"`
	Key        string `json:"key" example:"serendipity"`
	// Whether the dictionary is currently published.
	Available bool      `json:"available" example:"true"`
	CreatedAt time.Time `json:"created_at"`
}
