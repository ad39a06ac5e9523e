// Package discovery scans dictionary directories for dictionary files and
// merges what it finds into the source set. Only one scan runs at a time.
package discovery

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"aardd/internal/descriptor"
)

// ErrDiscoveryRunning is returned by Start while a scan is in progress.
var ErrDiscoveryRunning = errors.New("discovery already running")

// Poster delivers closures to the main loop.
type Poster interface {
	Post(fn func()) bool
}

// Submitter runs jobs off the main loop.
type Submitter interface {
	Submit(job func(ctx context.Context))
}

// Callback receives the number of descriptors added and the scan error.
type Callback func(added int, err error)

// Config wires a Runner.
type Config struct {
	Set     *descriptor.SourceSet
	Scanner *Scanner
	Loop    Poster
	Pool    Submitter
	// Opener is handed to every new descriptor. nil selects dict.OpenFile.
	Opener descriptor.Opener
	Logger zerolog.Logger
}

type Runner struct {
	cfg     Config
	log     zerolog.Logger
	running atomic.Bool
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, log: cfg.Logger.With().Str("component", "discovery").Logger()}
}

// Running reports whether a scan is in progress.
func (r *Runner) Running() bool { return r.running.Load() }

// Start clears the source set and scans in the background. When the scan
// completes the found dictionaries are appended to the set on the main loop
// and cb is called exactly once. Start must be called on the main loop; it
// returns ErrDiscoveryRunning, leaving the set untouched, if a scan is
// already in progress.
func (r *Runner) Start(cb Callback) error {
	if !r.running.CompareAndSwap(false, true) {
		discoveryRuns.WithLabelValues("rejected").Inc()
		r.log.Error().Err(ErrDiscoveryRunning).Msg("discovery requested while running")
		return ErrDiscoveryRunning
	}
	r.cfg.Set.Clear()
	start := time.Now()
	r.log.Info().Strs("dirs", r.cfg.Scanner.Dirs).Msg("discovery started")
	r.cfg.Pool.Submit(func(ctx context.Context) {
		found, err := r.cfg.Scanner.Scan(ctx)
		posted := r.cfg.Loop.Post(func() { r.finish(found, err, start, cb) })
		if !posted {
			r.running.Store(false)
		}
	})
	return nil
}

func (r *Runner) finish(found []Found, err error, start time.Time, cb Callback) {
	ds := make([]*descriptor.SourceDescriptor, 0, len(found))
	for _, f := range found {
		ds = append(ds, descriptor.NewSourceDescriptor(f.ID, f.Path, f.Label, r.cfg.Opener))
	}
	added := r.cfg.Set.AddAll(ds)
	r.running.Store(false)

	result := "ok"
	if err != nil {
		result = "error"
		r.log.Error().Err(err).Int("added", added).Msg("discovery failed")
	} else {
		r.log.Info().Int("found", len(found)).Int("added", added).Dur("took", time.Since(start)).Msg("discovery finished")
	}
	discoveryRuns.WithLabelValues(result).Inc()
	discoveryFound.Add(float64(added))
	if cb != nil {
		cb(added, err)
	}
}
