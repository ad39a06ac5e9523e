package lookup

import (
	"sync"

	"aardd/internal/dict"
)

// Result is the outcome of one lookup. Entries are pulled lazily from the
// underlying iterator and cached, so every reader sees the same prefix.
type Result struct {
	query string

	mu     sync.Mutex
	it     *dict.Iterator
	cached []dict.Entry
	done   bool
	cancel func()
}

func newResult(query string, it *dict.Iterator, cancel func()) *Result {
	if it == nil {
		it = dict.Empty()
	}
	if cancel == nil {
		cancel = func() {}
	}
	return &Result{query: query, it: it, cancel: cancel}
}

func emptyResult(query string) *Result { return newResult(query, nil, nil) }

// Query returns the query this result belongs to.
func (r *Result) Query() string { return r.query }

// Entries returns up to n entries, pulling more from the iterator as needed.
// A negative n returns everything.
func (r *Result) Entries(n int) []dict.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fillLocked(n)
	if n < 0 || n > len(r.cached) {
		n = len(r.cached)
	}
	out := make([]dict.Entry, n)
	copy(out, r.cached[:n])
	return out
}

// Err returns the error that ended iteration early, if any.
func (r *Result) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.it.Err()
}

// Exhausted reports whether every entry has been pulled.
func (r *Result) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Result) fillLocked(n int) {
	for !r.done && (n < 0 || len(r.cached) < n) {
		e, ok := r.it.Next()
		if !ok {
			r.done = true
			return
		}
		r.cached = append(r.cached, e)
	}
}

// release cancels the context lazy pulls run under. Only results that were
// never published are released; published ones end with their generation.
func (r *Result) release() { r.cancel() }
