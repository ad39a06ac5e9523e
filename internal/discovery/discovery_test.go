package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aardd/internal/descriptor"
	"aardd/internal/dict"
)

type manualLoop struct{ posted []func() }

func (l *manualLoop) Post(fn func()) bool { l.posted = append(l.posted, fn); return true }

func (l *manualLoop) runAll() {
	for len(l.posted) > 0 {
		fn := l.posted[0]
		l.posted = l.posted[1:]
		fn()
	}
}

type manualPool struct{ jobs []func(context.Context) }

func (p *manualPool) Submit(job func(context.Context)) { p.jobs = append(p.jobs, job) }

func writeDict(t *testing.T, path, id, label string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := dict.Create(path, dict.Info{ID: id, Label: label})
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if _, err := w.Add("word", "text/plain", []byte("w"), ""); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestScanner_FindsNestedDictionaries(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, filepath.Join(dir, "b.dictdb"), "b", "B")
	writeDict(t, filepath.Join(dir, "nested", "deep", "a.dictdb"), "a", "")
	if err := os.WriteFile(filepath.Join(dir, "broken.dictdb"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var progressed int
	s := &Scanner{
		Dirs:     []string{dir, filepath.Join(dir, "missing")},
		Progress: func(string) { progressed++ },
		Logger:   zerolog.Nop(),
	}
	found, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 dictionaries, got %+v", found)
	}
	if found[0].ID != "b" || found[0].Label != "B" {
		t.Fatalf("unexpected first %+v", found[0])
	}
	if found[1].ID != "a" || found[1].Label != "a.dictdb" {
		t.Fatalf("label should fall back to file name: %+v", found[1])
	}
	if progressed != 3 {
		t.Fatalf("expected 3 probes, got %d", progressed)
	}
}

func TestScanner_CustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, filepath.Join(dir, "keep", "x.dictdb"), "x", "X")
	writeDict(t, filepath.Join(dir, "skip", "y.dictdb"), "y", "Y")
	s := &Scanner{Dirs: []string{dir}, Patterns: []string{"keep/**/*.dictdb"}, Logger: zerolog.Nop()}
	found, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != "x" {
		t.Fatalf("unexpected %+v", found)
	}
}

func TestMatch(t *testing.T) {
	if !Match(nil, "a/b/c.dictdb") || !Match(nil, "c.dictdb") {
		t.Fatalf("default pattern should match at any depth")
	}
	if Match(nil, "c.txt") {
		t.Fatalf("unexpected match")
	}
}

func newRunner(t *testing.T, dir string) (*Runner, *descriptor.SourceSet, *manualLoop, *manualPool) {
	t.Helper()
	set := descriptor.NewSourceSet()
	l, p := &manualLoop{}, &manualPool{}
	r := NewRunner(Config{
		Set:     set,
		Scanner: &Scanner{Dirs: []string{dir}, Logger: zerolog.Nop()},
		Loop:    l,
		Pool:    p,
		Logger:  zerolog.Nop(),
	})
	return r, set, l, p
}

func TestRunner_SingleFlight(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, filepath.Join(dir, "a.dictdb"), "a", "A")
	writeDict(t, filepath.Join(dir, "b.dictdb"), "b", "B")
	r, set, l, p := newRunner(t, dir)
	set.Add(descriptor.NewSourceDescriptor("old", "/old", "Old", nil))

	calls := 0
	var added int
	if err := r.Start(func(n int, err error) {
		calls++
		added = n
		if err != nil {
			t.Errorf("scan error: %v", err)
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("start must clear the set")
	}
	set.Add(descriptor.NewSourceDescriptor("manual", "/m", "M", nil))
	changes := 0
	set.Subscribe(func() { changes++ })

	if err := r.Start(nil); !errors.Is(err, ErrDiscoveryRunning) {
		t.Fatalf("expected ErrDiscoveryRunning, got %v", err)
	}
	if set.Len() != 1 || changes != 0 || len(p.jobs) != 1 {
		t.Fatalf("rejected start must not touch the set (len=%d changes=%d jobs=%d)", set.Len(), changes, len(p.jobs))
	}

	p.jobs[0](context.Background())
	if !r.Running() {
		t.Fatalf("still running until completion runs on the loop")
	}
	l.runAll()
	if r.Running() {
		t.Fatalf("running flag not cleared")
	}
	if calls != 1 || added != 2 {
		t.Fatalf("callback calls=%d added=%d", calls, added)
	}
	if changes != 1 {
		t.Fatalf("expected one bulk notification, got %d", changes)
	}
	got := set.Items()
	if len(got) != 3 || got[0].ID != "manual" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("unexpected set %v", got)
	}
	if err := r.Start(nil); err != nil {
		t.Fatalf("second run after completion: %v", err)
	}
}

func TestRunner_ScanErrorStillCallsBack(t *testing.T) {
	r, _, l, p := newRunner(t, t.TempDir())
	var gotErr error
	calls := 0
	if err := r.Start(func(_ int, err error) { calls++; gotErr = err }); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.jobs[0](ctx)
	l.runAll()
	if calls != 1 || !errors.Is(gotErr, context.Canceled) {
		t.Fatalf("calls=%d err=%v", calls, gotErr)
	}
	if r.Running() {
		t.Fatalf("running flag not cleared after error")
	}
}

func TestWatcher_TriggersOnNewDictionary(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 4)
	w, err := NewWatcher([]string{dir}, nil, 50*time.Millisecond, func() { fired <- struct{}{} }, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeDict(t, filepath.Join(dir, "new.dictdb"), "n", "N")
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not trigger")
	}
}
