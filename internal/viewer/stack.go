// Package viewer tracks open content-viewing contexts and closes the oldest
// once more than Capacity are open.
package viewer

import (
	"sync"

	"github.com/rs/zerolog"
)

// Capacity is the maximum number of open viewers.
const Capacity = 3

// Handle is an open viewer.
type Handle interface {
	Close() error
}

// Stack is the ordered set of open viewers, oldest first.
type Stack struct {
	mu       sync.Mutex
	handles  []Handle
	capacity int
	log      zerolog.Logger
}

// NewStack returns an empty stack bounded by Capacity.
func NewStack(log zerolog.Logger) *Stack {
	return &Stack{capacity: Capacity, log: log.With().Str("component", "viewer").Logger()}
}

// Push records h as the newest viewer. When the stack grows beyond its
// capacity the oldest viewer is removed and closed.
func (s *Stack) Push(h Handle) {
	s.mu.Lock()
	s.handles = append(s.handles, h)
	var evicted Handle
	if len(s.handles) > s.capacity {
		evicted = s.handles[0]
		s.handles = append([]Handle(nil), s.handles[1:]...)
	}
	s.mu.Unlock()
	if evicted != nil {
		if err := evicted.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close evicted viewer")
		}
	}
}

// Pop removes h. Unknown handles are ignored.
func (s *Stack) Pop(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.handles {
		if v == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// Len returns the number of open viewers.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Handles returns the open viewers, oldest first.
func (s *Stack) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Handle(nil), s.handles...)
}
