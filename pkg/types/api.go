package types

// LookupResponse is returned by GET /lookup and GET /lookup/preferred.
type LookupResponse struct {
	// Query the entries belong to.
	// example: seren
	Query string `json:"query" example:"seren"`
	// Matched entries, best first.
	Entries []Entry `json:"entries"`
	// True when no further entries exist beyond this page.
	Exhausted bool `json:"exhausted" example:"true"`
}

// SourcesResponse wraps the dictionary list returned by GET /sources.
type SourcesResponse struct {
	Sources []Source `json:"sources"`
}

// AddSourceRequest is the body of POST /sources.
type AddSourceRequest struct {
	// Path of a dictionary file; "~" is expanded.
	// example: ~/dictionaries/wordnet.dictdb
	Path string `json:"path" example:"~/dictionaries/wordnet.dictdb"`
}

// SetActiveRequest is the body of PUT /sources/{id}/active.
type SetActiveRequest struct {
	Active bool `json:"active" example:"false"`
}

// DiscoverResponse is returned by POST /discover.
type DiscoverResponse struct {
	// True when a new scan was started.
	Started bool `json:"started" example:"true"`
}

// BookmarkRequest is the body of POST /bookmarks.
type BookmarkRequest struct {
	// example: /content/wordnet-3.1/serendipity?blob=4711
	ContentURL string `json:"content_url" example:"/content/wordnet-3.1/serendipity?blob=4711"`
}

// BookmarksResponse wraps bookmark and history lists.
type BookmarksResponse struct {
	Items []Bookmark `json:"items"`
}

// ViewerMessage is a frame on the /viewer websocket. Clients send
// {"type":"lookup","query":...}; the server sends lookup progress
// (lookup_started, lookup_canceled, lookup_finished) and application events.
type ViewerMessage struct {
	// example: lookup_finished
	Type  string `json:"type" example:"lookup_finished"`
	Query string `json:"query,omitempty"`
	// Dictionary id for dictionary events.
	SourceID string         `json:"source_id,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
