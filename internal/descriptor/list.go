// Package descriptor provides observable, ordered descriptor lists: the
// dictionary SourceSet and the bookmark/history BlobLists.
//
// Every mutation is followed by a synchronous "changed" notification to all
// observers, in registration order, after the list's lock is released.
// Mutations are expected to come from a single sequencing goroutine; reads
// are safe from any goroutine.
package descriptor

import "sync"

// Item is anything with a stable identity within its list.
type Item interface {
	Identity() string
}

// List is an ordered collection of unique items.
type List[T Item] struct {
	mu        sync.RWMutex
	items     []T
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func()
}

// NewList returns an empty list.
func NewList[T Item]() *List[T] { return &List[T]{} }

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (l *List[T]) Subscribe(fn func()) (unsubscribe func()) {
	l.mu.Lock()
	l.nextObs++
	id := l.nextObs
	l.observers = append(l.observers, observer{id: id, fn: fn})
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, o := range l.observers {
			if o.id == id {
				l.observers = append(l.observers[:i], l.observers[i+1:]...)
				return
			}
		}
	}
}

// NotifyChanged informs observers without mutating the list.
func (l *List[T]) NotifyChanged() {
	l.mu.RLock()
	obs := make([]observer, len(l.observers))
	copy(obs, l.observers)
	l.mu.RUnlock()
	for _, o := range obs {
		o.fn()
	}
}

// Items returns a copy of the items in order.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns the item with the given identity.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Contains reports whether an item with the given identity is present.
func (l *List[T]) Contains(id string) bool {
	_, ok := l.Get(id)
	return ok
}

// Add appends item. It returns false, without notifying, when an item with
// the same identity is already present.
func (l *List[T]) Add(item T) bool {
	l.mu.Lock()
	if l.indexLocked(item.Identity()) >= 0 {
		l.mu.Unlock()
		return false
	}
	l.items = append(l.items, item)
	l.mu.Unlock()
	l.NotifyChanged()
	return true
}

// AddAll appends every item whose identity is not yet present and returns
// how many were added. Observers are notified once.
func (l *List[T]) AddAll(items []T) int {
	l.mu.Lock()
	n := 0
	for _, it := range items {
		if l.indexLocked(it.Identity()) >= 0 {
			continue
		}
		l.items = append(l.items, it)
		n++
	}
	l.mu.Unlock()
	l.NotifyChanged()
	return n
}

// Remove deletes the item with the given identity and returns it.
func (l *List[T]) Remove(id string) (T, bool) {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		var zero T
		return zero, false
	}
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.mu.Unlock()
	l.NotifyChanged()
	return item, true
}

// Clear removes every item and returns them.
func (l *List[T]) Clear() []T {
	l.mu.Lock()
	old := l.items
	l.items = nil
	l.mu.Unlock()
	l.NotifyChanged()
	return old
}

// Replace swaps the whole content, dropping duplicates, and notifies once.
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	l.items = nil
	for _, it := range items {
		if l.indexLocked(it.Identity()) < 0 {
			l.items = append(l.items, it)
		}
	}
	l.mu.Unlock()
	l.NotifyChanged()
}

// mutate runs fn on the item under the write lock and notifies when fn
// reports a change.
func (l *List[T]) mutate(id string, fn func(T) bool) bool {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	changed := fn(l.items[i])
	l.mu.Unlock()
	if changed {
		l.NotifyChanged()
	}
	return true
}

func (l *List[T]) indexLocked(id string) int {
	for i, it := range l.items {
		if it.Identity() == id {
			return i
		}
	}
	return -1
}
