package dict

import "context"

type seenKey struct {
	source string
	blob   int64
}

// Iterator is a lazy, finite, single-pass sequence of entries. Sources are
// queried level by level, strictest first, only when the buffer runs dry.
// It is not safe for concurrent use.
type Iterator struct {
	ctx     context.Context
	query   string
	limit   int
	sources []Source
	floor   Strength

	level   Strength
	src     int
	buf     []Entry
	seen    map[seenKey]struct{}
	emitted int
	err     error
	done    bool
}

func newIterator(ctx context.Context, query string, limit int, sources []Source, floor Strength) *Iterator {
	return &Iterator{
		ctx:     ctx,
		query:   query,
		limit:   limit,
		sources: sources,
		floor:   floor,
		level:   Identical,
		seen:    make(map[seenKey]struct{}),
		done:    limit <= 0 || len(sources) == 0,
	}
}

// Empty returns an iterator that yields nothing.
func Empty() *Iterator { return &Iterator{done: true} }

// Next returns the next entry. ok is false once the sequence is exhausted or
// an error occurred; check Err afterwards.
func (it *Iterator) Next() (Entry, bool) {
	for {
		if it.done || it.emitted >= it.limit {
			it.done = true
			return Entry{}, false
		}
		if len(it.buf) > 0 {
			e := it.buf[0]
			it.buf = it.buf[1:]
			k := seenKey{e.SourceID, e.BlobID}
			if _, dup := it.seen[k]; dup {
				continue
			}
			it.seen[k] = struct{}{}
			it.emitted++
			return e, true
		}
		if !it.fill() {
			it.done = true
			return Entry{}, false
		}
	}
}

// Take drains up to n entries.
func (it *Iterator) Take(n int) []Entry {
	var out []Entry
	for len(out) < n {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// Err reports the first error encountered while querying sources.
func (it *Iterator) Err() error { return it.err }

// fill queries the next (level, source) pair. It returns false when every
// pair above the floor has been consulted.
func (it *Iterator) fill() bool {
	for it.level >= it.floor {
		if it.src >= len(it.sources) {
			it.src = 0
			it.level--
			continue
		}
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}
		s := it.sources[it.src]
		it.src++
		// Ask for enough rows to cover duplicates already emitted.
		want := it.limit - it.emitted + len(it.seen)
		found, err := s.Match(it.ctx, it.query, it.level, want)
		if err != nil {
			it.err = err
			return false
		}
		if len(found) > 0 {
			it.buf = found
			return true
		}
	}
	return false
}
