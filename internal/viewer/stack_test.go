package viewer

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeHandle struct {
	name   string
	closed int
	err    error
}

func (h *fakeHandle) Close() error { h.closed++; return h.err }

func TestStack_EvictsOldest(t *testing.T) {
	s := NewStack(zerolog.Nop())
	a, b, c, d := &fakeHandle{name: "a"}, &fakeHandle{name: "b"}, &fakeHandle{name: "c"}, &fakeHandle{name: "d", err: errors.New("x")}
	s.Push(a)
	s.Push(b)
	s.Push(c)
	if s.Len() != 3 || a.closed != 0 {
		t.Fatalf("no eviction expected at capacity")
	}
	s.Push(d)
	if a.closed != 1 {
		t.Fatalf("expected oldest closed once, got %d", a.closed)
	}
	got := s.Handles()
	if len(got) != 3 || got[0] != b || got[1] != c || got[2] != d {
		t.Fatalf("unexpected stack %v", got)
	}
	// second eviction closes a handle whose Close fails; still removed
	s.Push(&fakeHandle{name: "e"})
	s.Push(&fakeHandle{name: "f"})
	s.Push(&fakeHandle{name: "g"})
	if d.closed != 1 || s.Len() != 3 {
		t.Fatalf("d closed=%d len=%d", d.closed, s.Len())
	}
}

func TestStack_PopAbsentIsNoop(t *testing.T) {
	s := NewStack(zerolog.Nop())
	a, b := &fakeHandle{}, &fakeHandle{}
	s.Push(a)
	s.Pop(b)
	if s.Len() != 1 {
		t.Fatalf("pop of absent handle changed stack")
	}
	s.Pop(a)
	s.Pop(a)
	if s.Len() != 0 || a.closed != 0 {
		t.Fatalf("pop must remove without closing")
	}
}

func TestStack_NoPromotionOnRepush(t *testing.T) {
	s := NewStack(zerolog.Nop())
	a, b, c := &fakeHandle{}, &fakeHandle{}, &fakeHandle{}
	s.Push(a)
	s.Push(b)
	s.Push(c)
	s.Pop(a)
	s.Push(a)
	s.Push(&fakeHandle{})
	if b.closed != 1 || a.closed != 0 {
		t.Fatalf("expected b evicted as oldest, b=%d a=%d", b.closed, a.closed)
	}
}
