package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"aardd/internal/bootstrap"
	"aardd/internal/common/fsutil"
	"aardd/internal/descriptor"
	"aardd/internal/dict"
	"aardd/internal/discovery"
	"aardd/internal/loop"
	"aardd/internal/lookup"
	"aardd/internal/store"
	"aardd/internal/viewer"
)

// published pairs a descriptor with the source it opened in the last rebuild.
type published struct {
	desc *descriptor.SourceDescriptor
	src  dict.Source
}

type App struct {
	cfg    Config
	log    zerolog.Logger
	events EventPublisher

	loop  *loop.Loop
	pool  *loop.Pool
	store *store.Store

	engine    *dict.Engine
	sources   *descriptor.SourceSet
	bookmarks *descriptor.BlobList
	history   *descriptor.BlobList
	coord     *lookup.Coordinator
	discovery *discovery.Runner
	scanner   *discovery.Scanner
	watcher   *discovery.Watcher
	viewers   *viewer.Stack
	binding   *bootstrap.Binding

	mu        sync.RWMutex
	published []published
	userStyle string

	startOnce sync.Once
	closeOnce sync.Once
	closed    bool
	ready     atomic.Bool
}

// NewWithConfig constructs an App from Config, applying defaults and
// opening the state store. Call Start to bind and load state.
func NewWithConfig(cfg Config) (*App, error) {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.MaxAssetBytes <= 0 {
		cfg.MaxAssetBytes = defaultMaxAssetBytes
	}
	switch cfg.PreferredPolicy {
	case "":
		cfg.PreferredPolicy = PolicyAll
	case PolicyAll, PolicyActive:
	default:
		return nil, fmt.Errorf("unknown preferred policy %q", cfg.PreferredPolicy)
	}
	if len(cfg.DictionaryPatterns) == 0 {
		cfg.DictionaryPatterns = discovery.DefaultPatterns
	}
	a := &App{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "app").Logger(),
		events:    cfg.Events,
		engine:    dict.NewEngine(),
		sources:   descriptor.NewSourceSet(),
		bookmarks: descriptor.NewBlobList(0),
		history:   descriptor.NewBlobList(cfg.HistorySize),
		viewers:   viewer.NewStack(cfg.Logger),
		binding:   bootstrap.NewBinding(),
	}
	if a.events == nil {
		a.events = noopPublisher{}
	}
	a.bookmarks.Subscribe(func() { a.events.Publish(Event{Name: EventBookmarksChanged}) })
	a.history.Subscribe(func() { a.events.Publish(Event{Name: EventHistoryChanged}) })
	if cfg.DataDir != "" {
		dir, err := fsutil.ExpandHome(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		st, err := store.Open(filepath.Join(dir, stateFileName))
		if err != nil {
			return nil, err
		}
		a.store = st
	}
	a.loop = loop.New(cfg.Logger)
	a.pool = loop.NewPool(cfg.Workers, cfg.Logger)

	lcfg := lookup.Config{
		Finder:    a.engine,
		Sources:   a.ActiveSources,
		Loop:      a.loop,
		Pool:      a.pool,
		Limit:     cfg.LookupLimit,
		Preferred: cfg.PreferredLimit,
		PageSize:  cfg.PageSize,
		Logger:    cfg.Logger,
	}
	if a.store != nil {
		lcfg.Store = a.store
	}
	a.coord = lookup.New(lcfg)

	a.scanner = &discovery.Scanner{
		Dirs:     cfg.DictionaryDirs,
		Patterns: cfg.DictionaryPatterns,
		Progress: cfg.ScanProgress,
		Logger:   cfg.Logger,
	}
	a.discovery = discovery.NewRunner(discovery.Config{
		Set:     a.sources,
		Scanner: a.scanner,
		Loop:    a.loop,
		Pool:    a.pool,
		Opener:  cfg.Opener,
		Logger:  cfg.Logger,
	})
	return a, nil
}

// Start binds the content server through starter, then restores persisted
// state on the main loop: the dictionary list (which triggers the first
// rebuild), the last query (run synchronously) and bookmarks and history.
// A bind exhaustion error is returned as is.
func (a *App) Start(ctx context.Context, starter bootstrap.Starter) error {
	var err error
	a.startOnce.Do(func() { err = a.start(ctx, starter) })
	return err
}

func (a *App) start(ctx context.Context, starter bootstrap.Starter) error {
	a.loop.Start()
	if starter != nil {
		b := &bootstrap.Bootstrapper{
			Host:    a.cfg.Host,
			Port:    a.cfg.Port,
			Starter: starter,
			Intn:    a.cfg.Intn,
			Logger:  a.cfg.Logger,
			Binding: a.binding,
		}
		if _, err := b.Bind(); err != nil {
			return err
		}
	}
	if a.cfg.UserStyle != "" {
		js, err := fsutil.ReadTextFile(a.cfg.UserStyle, a.cfg.MaxAssetBytes)
		if err != nil {
			return fmt.Errorf("load user style: %w", err)
		}
		a.mu.Lock()
		a.userStyle = js
		a.mu.Unlock()
	}

	var (
		initial  string
		srcRecs  []store.SourceRecord
		marks    []*descriptor.BlobDescriptor
		visited  []*descriptor.BlobDescriptor
		loadErrs []error
	)
	if a.store != nil {
		var err error
		if initial, err = a.store.LoadQuery(); err != nil {
			loadErrs = append(loadErrs, err)
		}
		if srcRecs, err = a.store.LoadSources(); err != nil {
			loadErrs = append(loadErrs, err)
		}
		if marks, err = a.store.LoadBlobs(store.ListBookmarks); err != nil {
			loadErrs = append(loadErrs, err)
		}
		if visited, err = a.store.LoadBlobs(store.ListHistory); err != nil {
			loadErrs = append(loadErrs, err)
		}
	}
	if err := errors.Join(loadErrs...); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	err := a.loop.Call(ctx, func() {
		a.sources.Subscribe(a.rebuild)
		ds := make([]*descriptor.SourceDescriptor, 0, len(srcRecs))
		for _, r := range srcRecs {
			ds = append(ds, descriptor.NewSourceDescriptor(r.ID, r.Path, r.Label, a.cfg.Opener).WithActive(r.Active))
		}
		a.sources.Replace(ds)
		a.coord.Lookup(initial, false)
		a.bookmarks.Replace(marks)
		a.history.Replace(visited)
		a.subscribePersistence()
	})
	if err != nil {
		return err
	}
	if a.cfg.Watch && len(a.cfg.DictionaryDirs) > 0 {
		if err := a.startWatch(ctx); err != nil {
			a.log.Warn().Err(err).Msg("watch mode unavailable")
		}
	}
	a.ready.Store(true)
	a.log.Info().Str("addr", a.binding.Addr()).Int("dictionaries", a.sources.Len()).Str("query", initial).Msg("started")
	return nil
}

func (a *App) subscribePersistence() {
	if a.store == nil {
		return
	}
	a.sources.Subscribe(func() {
		items := a.sources.Items()
		recs := make([]store.SourceRecord, len(items))
		for i, d := range items {
			recs[i] = store.SourceRecord{ID: d.ID, Path: d.Path, Label: d.Label, Active: d.Active()}
		}
		if err := a.store.SaveSources(recs); err != nil {
			a.log.Error().Err(err).Msg("persist dictionaries")
		}
	})
	a.bookmarks.Subscribe(func() {
		if err := a.store.SaveBlobs(store.ListBookmarks, a.bookmarks.Items()); err != nil {
			a.log.Error().Err(err).Msg("persist bookmarks")
		}
	})
	a.history.Subscribe(func() {
		if err := a.store.SaveBlobs(store.ListHistory, a.history.Items()); err != nil {
			a.log.Error().Err(err).Msg("persist history")
		}
	})
}

// Close stops background work, closes every dictionary and the state
// store. It is safe to call more than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.watcher != nil {
			a.watcher.Stop()
		}
		a.ready.Store(false)
		a.pool.Close()
		a.loop.Post(func() {
			a.closed = true
			a.coord.ClearResult()
			a.engine.SetSources(nil)
			a.mu.Lock()
			a.published = nil
			a.mu.Unlock()
			for _, d := range a.sources.Items() {
				if cerr := d.Close(); cerr != nil {
					a.log.Warn().Str("dictionary", d.ID).Err(cerr).Msg("close dictionary")
				}
			}
		})
		a.loop.Close()
		if a.store != nil {
			err = a.store.Close()
		}
	})
	return err
}

// Ready reports whether Start completed and Close has not been called.
func (a *App) Ready() bool { return a.ready.Load() }

// Binding returns the content server binding.
func (a *App) Binding() *bootstrap.Binding { return a.binding }

// Engine returns the search engine. Its source list is owned by the App.
func (a *App) Engine() *dict.Engine { return a.engine }

// UserStyle returns the configured user style script, if any.
func (a *App) UserStyle() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userStyle
}

// call runs fn on the main loop and waits.
func (a *App) call(ctx context.Context, fn func()) error {
	if err := a.loop.Call(ctx, fn); err != nil {
		if errors.Is(err, loop.ErrClosed) {
			return ErrClosed
		}
		return err
	}
	return nil
}
