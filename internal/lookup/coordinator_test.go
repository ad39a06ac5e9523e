package lookup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"aardd/internal/dict"
	"aardd/internal/loop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualLoop and manualPool let tests decide when jobs and completions run.
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

type memStore struct{ saved []string }

func (s *memStore) SaveQuery(q string) error { s.saved = append(s.saved, q); return nil }

type recorder struct{ events []string }

func (r *recorder) LookupStarted(q string)  { r.events = append(r.events, "start:"+q) }
func (r *recorder) LookupCanceled(q string) { r.events = append(r.events, "cancel:"+q) }
func (r *recorder) LookupFinished(q string) { r.events = append(r.events, "finish:"+q) }

func makeSource(t *testing.T, id string, keys ...string) dict.Source {
	t.Helper()
	p := filepath.Join(t.TempDir(), id+dict.FileExt)
	w, err := dict.Create(p, dict.Info{ID: id, Label: id})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, k := range keys {
		if _, err := w.Add(k, "text/plain", []byte(k), ""); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	s, err := dict.OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	c     *Coordinator
	loop  *manualLoop
	pool  *manualPool
	store *memStore
	rec   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	src := makeSource(t, "d1", "apple", "apricot", "banana")
	eng := dict.NewEngine()
	eng.SetSources([]dict.Source{src})
	f := &fixture{loop: &manualLoop{}, pool: &manualPool{}, store: &memStore{}, rec: &recorder{}}
	f.c = New(Config{
		Finder:  eng,
		Sources: eng.Sources,
		Loop:    f.loop,
		Pool:    f.pool,
		Store:   f.store,
		Logger:  zerolog.Nop(),
	})
	f.c.AddListener(f.rec)
	return f
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLookup_SupersededQueryNeverPublishes(t *testing.T) {
	for _, order := range []string{"old-first", "new-first"} {
		t.Run(order, func(t *testing.T) {
			f := newFixture(t)
			f.c.Lookup("ap", true)
			f.c.Lookup("banana", true)
			if len(f.pool.jobs) != 2 {
				t.Fatalf("expected 2 jobs, got %d", len(f.pool.jobs))
			}
			if order == "old-first" {
				f.pool.jobs[0](context.Background())
				f.pool.jobs[1](context.Background())
			} else {
				f.pool.jobs[1](context.Background())
				f.pool.jobs[0](context.Background())
			}
			f.loop.runAll()

			if q := f.c.Query(); q != "banana" {
				t.Fatalf("query = %q", q)
			}
			got := f.c.Result().Entries(-1)
			if len(got) != 1 || got[0].Key != "banana" {
				t.Fatalf("unexpected result %+v", got)
			}
			want := []string{"start:ap", "cancel:banana", "start:banana", "finish:banana"}
			if !equal(f.rec.events, want) {
				t.Fatalf("events = %v, want %v", f.rec.events, want)
			}
			if !equal(f.store.saved, []string{"banana"}) {
				t.Fatalf("saved = %v", f.store.saved)
			}
			if f.c.Running() {
				t.Fatalf("coordinator still running")
			}
		})
	}
}

func TestLookup_CanceledContextStopsWork(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("ap", true)
	f.c.Lookup("banana", true)
	// the first job's context is already canceled when it finally runs
	f.pool.jobs[0](context.Background())
	if len(f.loop.posted) != 1 {
		t.Fatalf("expected completion posted")
	}
	f.loop.runAll()
	if f.c.Query() != "" {
		t.Fatalf("canceled lookup published query %q", f.c.Query())
	}
}

func TestLookup_EmptyQueryIsSynchronous(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("", true)
	if len(f.pool.jobs) != 0 || len(f.loop.posted) != 0 {
		t.Fatalf("empty query must not schedule work")
	}
	if !equal(f.rec.events, []string{"start:", "finish:"}) {
		t.Fatalf("events = %v", f.rec.events)
	}
	if !equal(f.store.saved, []string{""}) {
		t.Fatalf("empty query must be persisted, saved=%v", f.store.saved)
	}
	if n := len(f.c.Result().Entries(-1)); n != 0 {
		t.Fatalf("expected empty result, got %d", n)
	}
}

func TestLookup_EmptyQueryCancelsRunning(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("ap", true)
	f.c.Lookup("", true)
	f.pool.jobs[0](context.Background())
	f.loop.runAll()
	want := []string{"start:ap", "cancel:", "start:", "finish:"}
	if !equal(f.rec.events, want) {
		t.Fatalf("events = %v, want %v", f.rec.events, want)
	}
	if f.c.Query() != "" || len(f.c.Result().Entries(-1)) != 0 {
		t.Fatalf("stale result published")
	}
}

func TestLookup_SyncRunsInCaller(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("ap", false)
	if len(f.pool.jobs) != 0 {
		t.Fatalf("sync lookup must not use the pool")
	}
	got := f.c.Result().Entries(-1)
	if len(got) != 2 || got[0].Key != "apple" || got[1].Key != "apricot" {
		t.Fatalf("unexpected result %+v", got)
	}
	if !equal(f.rec.events, []string{"start:ap", "finish:ap"}) {
		t.Fatalf("events = %v", f.rec.events)
	}
	if f.c.Query() != "ap" || !equal(f.store.saved, []string{"ap"}) {
		t.Fatalf("query not remembered")
	}
}

func TestResult_LazyPagesAreStable(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("a", false)
	r := f.c.Result()
	first := r.Entries(1)
	all := r.Entries(-1)
	again := r.Entries(-1)
	if len(first) != 1 || len(all) != 3 || len(again) != 3 || all[0] != first[0] {
		t.Fatalf("unstable result: %v %v %v", first, all, again)
	}
	if !r.Exhausted() || r.Err() != nil {
		t.Fatalf("expected exhausted without error")
	}
}

func TestClearResult_KeepsQuery(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("banana", false)
	f.c.ClearResult()
	if f.c.Query() != "banana" {
		t.Fatalf("query lost")
	}
	if len(f.c.Result().Entries(-1)) != 0 {
		t.Fatalf("result not cleared")
	}
}

func TestRemoveListener(t *testing.T) {
	f := newFixture(t)
	other := &ListenerFuncs{Finished: func(string) { t.Fatalf("removed listener called") }}
	f.c.AddListener(other)
	f.c.RemoveListener(other)
	f.c.Lookup("", true)
}

func TestFindPreferred(t *testing.T) {
	f := newFixture(t)
	extra := makeSource(t, "d2", "Apple", "applesauce")
	entries, err := f.c.FindPreferred(context.Background(), "apple", extra, f.c.cfg.Sources())
	if err != nil {
		t.Fatal(err)
	}
	// Quaternary threshold: exact and case-insensitive exact only
	if len(entries) != 2 || entries[0].Key != "apple" || entries[1].SourceID != "d2" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	for _, e := range entries {
		if e.Key == "applesauce" {
			t.Fatalf("prefix match must not pass the threshold")
		}
	}
}

func TestLookup_WithRealLoopAndPool(t *testing.T) {
	src := makeSource(t, "d1", "alpha", "beta")
	eng := dict.NewEngine()
	eng.SetSources([]dict.Source{src})
	l := loop.New(zerolog.Nop())
	l.Start()
	p := loop.NewPool(2, zerolog.Nop())
	defer l.Close()
	defer p.Close()

	done := make(chan string, 4)
	c := New(Config{Finder: eng, Sources: eng.Sources, Loop: l, Pool: p, Logger: zerolog.Nop()})
	ls := &ListenerFuncs{Finished: func(q string) { done <- q }}
	if err := l.Call(context.Background(), func() {
		c.AddListener(ls)
		c.Lookup("alpha", true)
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case q := <-done:
		if q != "alpha" {
			t.Fatalf("finished %q", q)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("lookup did not finish")
	}
	if got := c.Result().Entries(-1); len(got) != 1 || got[0].Key != "alpha" {
		t.Fatalf("unexpected result %+v", got)
	}
	if err := c.Result().Err(); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatal(err)
	}
}

func newPagedFixture(t *testing.T, pageSize int) *fixture {
	t.Helper()
	f := newFixture(t)
	cfg := f.c.cfg
	cfg.PageSize = pageSize
	f.c = New(cfg)
	f.c.AddListener(f.rec)
	return f
}

func TestPublish_ReplacedResultStaysReadable(t *testing.T) {
	f := newPagedFixture(t, 1)
	f.c.Lookup("a", false)
	held := f.c.Result()
	f.c.Lookup("banana", false)
	if f.c.Query() != "banana" {
		t.Fatalf("query = %q", f.c.Query())
	}
	got := held.Entries(-1)
	if err := held.Err(); err != nil {
		t.Fatalf("held result: %v", err)
	}
	if len(got) != 3 || !held.Exhausted() {
		t.Fatalf("held result: %v exhausted=%v", got, held.Exhausted())
	}
}

func TestClearResult_EndsHeldResults(t *testing.T) {
	f := newPagedFixture(t, 1)
	f.c.Lookup("a", false)
	held := f.c.Result()
	f.c.ClearResult()
	// entries already buffered from a source may still drain
	if got := held.Entries(-1); len(got) >= 3 {
		t.Fatalf("expected the held result to stop early, got %v", got)
	}
	if err := held.Err(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// results built after the clear use the new generation
	f.c.Lookup("a", false)
	if got := f.c.Result().Entries(-1); len(got) != 3 {
		t.Fatalf("fresh result: %v", got)
	}
}

func TestLookup_PoolShutdownNeverPublishes(t *testing.T) {
	f := newFixture(t)
	f.c.Lookup("ap", true)
	poolCtx, cancel := context.WithCancel(context.Background())
	cancel()
	f.pool.jobs[0](poolCtx)
	f.loop.runAll()

	if f.c.Query() != "" {
		t.Fatalf("aborted lookup published query %q", f.c.Query())
	}
	if len(f.store.saved) != 0 {
		t.Fatalf("aborted lookup persisted %v", f.store.saved)
	}
	if !equal(f.rec.events, []string{"start:ap"}) {
		t.Fatalf("events = %v", f.rec.events)
	}
	if f.c.Running() {
		t.Fatalf("aborted lookup still running")
	}
}
