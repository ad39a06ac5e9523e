package dict

import (
	"context"
	"math/rand"
	"sync"
)

// Engine holds the published source list and runs multi-source finds.
// SetSources replaces the list wholesale; readers always see a complete list.
type Engine struct {
	mu      sync.RWMutex
	sources []Source
}

// NewEngine returns an engine with no sources.
func NewEngine() *Engine { return &Engine{} }

// SetSources replaces the engine's source list. A nil or empty slice clears it.
func (e *Engine) SetSources(sources []Source) {
	cp := make([]Source, len(sources))
	copy(cp, sources)
	e.mu.Lock()
	e.sources = cp
	e.mu.Unlock()
}

// Sources returns a copy of the published source list, in order.
func (e *Engine) Sources() []Source {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Source, len(e.sources))
	copy(out, e.sources)
	return out
}

// Source returns the published source with the given id, or nil.
func (e *Engine) Source(id string) Source {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.sources {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// FindSource resolves a source by id first, then by URI.
func (e *Engine) FindSource(idOrURI string) Source {
	if s := e.Source(idOrURI); s != nil {
		return s
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, s := range e.sources {
		if s.URI() == idOrURI {
			return s
		}
	}
	return nil
}

// Find matches query against sources at every strength level, strictest
// first, and yields at most limit entries.
func (e *Engine) Find(ctx context.Context, query string, limit int, sources []Source) *Iterator {
	return newIterator(ctx, query, limit, sources, Primary)
}

// FindPreferred is like Find but consults preferred ahead of the other
// sources and stops at the threshold strength. A nil preferred source is
// ignored.
func (e *Engine) FindPreferred(ctx context.Context, query string, preferred Source, sources []Source, threshold Strength, limit int) *Iterator {
	ordered := make([]Source, 0, len(sources)+1)
	if preferred != nil {
		ordered = append(ordered, preferred)
	}
	for _, s := range sources {
		if preferred != nil && s.ID() == preferred.ID() {
			continue
		}
		ordered = append(ordered, s)
	}
	return newIterator(ctx, query, limit, ordered, threshold)
}

// FindRandom returns a random entry from a randomly chosen non-empty source.
func (e *Engine) FindRandom(ctx context.Context) (Entry, error) {
	sources := e.Sources()
	for _, i := range rand.Perm(len(sources)) {
		ent, err := sources[i].Random(ctx)
		if err == nil {
			return ent, nil
		}
		if ctx.Err() != nil {
			return Entry{}, ctx.Err()
		}
	}
	return Entry{}, ErrEmpty
}
