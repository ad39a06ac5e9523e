package descriptor

import (
	"sync"

	"aardd/internal/dict"
)

// Opener opens the dictionary file at path.
type Opener func(path string) (dict.Source, error)

// SourceDescriptor is the metadata record of one dictionary plus its open
// handle. Only the owner of the SourceSet opens or closes it.
type SourceDescriptor struct {
	ID    string
	Path  string
	Label string

	mu      sync.Mutex
	active  bool
	src     dict.Source
	lastErr string
	open    Opener
}

// NewSourceDescriptor returns an active, unopened descriptor. A nil opener
// defaults to dict.OpenFile.
func NewSourceDescriptor(id, path, label string, open Opener) *SourceDescriptor {
	if open == nil {
		open = dict.OpenFile
	}
	return &SourceDescriptor{ID: id, Path: path, Label: label, active: true, open: open}
}

func (d *SourceDescriptor) Identity() string { return d.ID }

// WithActive sets the active flag of a descriptor that is not yet in a set.
func (d *SourceDescriptor) WithActive(active bool) *SourceDescriptor {
	d.mu.Lock()
	d.active = active
	d.mu.Unlock()
	return d
}

// Active reports whether the dictionary participates in general lookups.
func (d *SourceDescriptor) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Open returns the open source, opening it on first use. On failure the
// source is nil and the error is remembered for LastError.
func (d *SourceDescriptor) Open() (dict.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.src != nil {
		return d.src, nil
	}
	s, err := d.open(d.Path)
	if err != nil {
		d.lastErr = err.Error()
		return nil, err
	}
	d.src = s
	d.lastErr = ""
	return s, nil
}

// Close closes the open source, if any. Closing twice is a no-op.
func (d *SourceDescriptor) Close() error {
	d.mu.Lock()
	s := d.src
	d.src = nil
	d.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}

// Source returns the currently open source or nil.
func (d *SourceDescriptor) Source() dict.Source {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.src
}

// LastError returns the error of the most recent failed Open.
func (d *SourceDescriptor) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// SourceSet is the ordered, observable set of dictionary descriptors.
type SourceSet struct {
	*List[*SourceDescriptor]
}

// NewSourceSet returns an empty set.
func NewSourceSet() *SourceSet { return &SourceSet{List: NewList[*SourceDescriptor]()} }

// SetActive flips the active flag and notifies observers when it changed.
// It returns false if id is unknown.
func (s *SourceSet) SetActive(id string, active bool) bool {
	return s.mutate(id, func(d *SourceDescriptor) bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.active == active {
			return false
		}
		d.active = active
		return true
	})
}

// IsActive reports the active flag of the descriptor with the given id;
// unknown ids are inactive.
func (s *SourceSet) IsActive(id string) bool {
	d, ok := s.Get(id)
	return ok && d.Active()
}
