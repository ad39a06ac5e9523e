// Package lookup runs dictionary queries one at a time. A new query cancels
// the one in flight; a canceled query never publishes its result.
//
// Lookup, ClearResult and listener registration must be called on the main
// loop. Query and Result are safe from any goroutine.
package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"aardd/internal/dict"
)

const (
	DefaultLimit          = 1000
	DefaultPreferredLimit = 10
	DefaultPageSize       = 20
	// PreferredThreshold is the weakest match strength preferred-source
	// lookups accept.
	PreferredThreshold = dict.Quaternary
)

// Finder is the search engine.
type Finder interface {
	Find(ctx context.Context, query string, limit int, sources []dict.Source) *dict.Iterator
	FindPreferred(ctx context.Context, query string, preferred dict.Source, sources []dict.Source, threshold dict.Strength, limit int) *dict.Iterator
}

// Poster delivers closures to the main loop.
type Poster interface {
	Post(fn func()) bool
}

// Submitter runs jobs off the main loop.
type Submitter interface {
	Submit(job func(ctx context.Context))
}

// Persister stores the last completed query.
type Persister interface {
	SaveQuery(q string) error
}

// Config wires a Coordinator. Zero limits select the package defaults.
type Config struct {
	Finder    Finder
	Sources   func() []dict.Source
	Loop      Poster
	Pool      Submitter
	Store     Persister
	Limit     int
	PageSize  int
	Logger    zerolog.Logger
	Preferred int
}

type task struct {
	query    string
	ctx      context.Context
	cancel   context.CancelFunc
	canceled atomic.Bool
	started  time.Time
}

type Coordinator struct {
	cfg Config
	log zerolog.Logger

	// owned by the main loop
	current   *task
	listeners []Listener

	mu     sync.RWMutex
	query  string
	result *Result

	// gen scopes every result built over the current source list. It is
	// canceled only when ClearResult tears that list down.
	gen       context.Context
	genCancel context.CancelFunc
}

// New returns a coordinator with an empty result.
func New(cfg Config) *Coordinator {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Preferred <= 0 {
		cfg.Preferred = DefaultPreferredLimit
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Sources == nil {
		cfg.Sources = func() []dict.Source { return nil }
	}
	c := &Coordinator{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("component", "lookup").Logger(),
		result: emptyResult(""),
	}
	c.gen, c.genCancel = context.WithCancel(context.Background())
	return c
}

// AddListener registers l. Adding the same listener twice is a no-op.
func (c *Coordinator) AddListener(l Listener) {
	for _, x := range c.listeners {
		if x == l {
			return
		}
	}
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters l.
func (c *Coordinator) RemoveListener(l Listener) {
	for i, x := range c.listeners {
		if x == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Query returns the last completed query.
func (c *Coordinator) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// Result returns the current result. It is never nil.
func (c *Coordinator) Result() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

// Running reports whether a background lookup is in flight.
func (c *Coordinator) Running() bool { return c.current != nil }

// ClearResult drops the current result and keeps the query. Every result
// handed out so far, including ones a reader still holds, stops pulling
// entries since the sources behind it are about to close.
func (c *Coordinator) ClearResult() {
	c.mu.Lock()
	c.result = emptyResult(c.query)
	cancel := c.genCancel
	c.gen, c.genCancel = context.WithCancel(context.Background())
	c.mu.Unlock()
	cancel()
}

func (c *Coordinator) generation() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Lookup starts query, canceling the one in flight. An empty query
// completes immediately without background work. With async false the
// query runs on the caller's goroutine.
func (c *Coordinator) Lookup(query string, async bool) {
	if prev := c.current; prev != nil {
		prev.canceled.Store(true)
		prev.cancel()
		c.current = nil
		lookupsTotal.WithLabelValues("canceled").Inc()
		lookupDuration.Observe(time.Since(prev.started).Seconds())
		c.log.Debug().Str("query", prev.query).Str("by", query).Msg("lookup canceled")
		c.notify(func(l Listener) { l.LookupCanceled(query) })
	}
	c.notify(func(l Listener) { l.LookupStarted(query) })

	if query == "" {
		lookupsTotal.WithLabelValues("empty").Inc()
		c.publish("", emptyResult(""))
		c.notify(func(l Listener) { l.LookupFinished("") })
		return
	}

	if !async {
		start := time.Now()
		ctx, cancel := context.WithCancel(c.generation())
		res := c.execute(ctx, query, cancel)
		lookupDuration.Observe(time.Since(start).Seconds())
		c.publish(query, res)
		c.notify(func(l Listener) { l.LookupFinished(query) })
		return
	}

	t := &task{query: query, started: time.Now()}
	t.ctx, t.cancel = context.WithCancel(c.generation())
	c.current = t
	sources := c.cfg.Sources()
	c.cfg.Pool.Submit(func(poolCtx context.Context) {
		stop := context.AfterFunc(poolCtx, t.cancel)
		defer stop()
		res := c.executeOn(t.ctx, query, sources, t.cancel)
		if poolCtx.Err() != nil {
			t.canceled.Store(true)
		}
		if !c.cfg.Loop.Post(func() { c.complete(t, res) }) {
			res.release()
		}
	})
}

// complete runs on the main loop. A task whose context ended without a
// newer query (pool shutdown, sources torn down) is dropped like a
// superseded one. The canceled check is the last step before the result
// becomes visible.
func (c *Coordinator) complete(t *task, res *Result) {
	if t.canceled.Load() || t.ctx.Err() != nil {
		if c.current == t {
			c.current = nil
			lookupsTotal.WithLabelValues("aborted").Inc()
			c.log.Debug().Str("query", t.query).Msg("lookup aborted")
		}
		res.release()
		return
	}
	if c.current == t {
		c.current = nil
	}
	lookupDuration.Observe(time.Since(t.started).Seconds())
	c.publish(t.query, res)
	c.notify(func(l Listener) { l.LookupFinished(t.query) })
}

func (c *Coordinator) execute(ctx context.Context, query string, cancel context.CancelFunc) *Result {
	return c.executeOn(ctx, query, c.cfg.Sources(), cancel)
}

// executeOn runs the find and prefetches the first page.
func (c *Coordinator) executeOn(ctx context.Context, query string, sources []dict.Source, cancel context.CancelFunc) *Result {
	it := c.cfg.Finder.Find(ctx, query, c.cfg.Limit, sources)
	res := newResult(query, it, cancel)
	res.Entries(c.cfg.PageSize)
	return res
}

func (c *Coordinator) publish(query string, res *Result) {
	outcome := "finished"
	if err := res.Err(); err != nil && !errors.Is(err, context.Canceled) {
		outcome = "error"
		c.log.Warn().Str("query", query).Err(err).Msg("lookup ended early")
	}
	if query != "" {
		lookupsTotal.WithLabelValues(outcome).Inc()
	}
	// The replaced result stays readable until its sources are torn down.
	c.mu.Lock()
	c.result = res
	c.query = query
	c.mu.Unlock()
	if c.cfg.Store != nil {
		if err := c.cfg.Store.SaveQuery(query); err != nil {
			c.log.Error().Err(err).Msg("persist query")
		}
	}
}

func (c *Coordinator) notify(fn func(Listener)) {
	ls := append([]Listener(nil), c.listeners...)
	for _, l := range ls {
		fn(l)
	}
}

// FindPreferred runs a bounded, strict lookup that consults preferred
// ahead of sources. It runs on the caller's goroutine and does not touch
// the current result.
func (c *Coordinator) FindPreferred(ctx context.Context, query string, preferred dict.Source, sources []dict.Source) ([]dict.Entry, error) {
	if query == "" {
		return nil, nil
	}
	it := c.cfg.Finder.FindPreferred(ctx, query, preferred, sources, PreferredThreshold, c.cfg.Preferred)
	entries := it.Take(c.cfg.Preferred)
	return entries, it.Err()
}
