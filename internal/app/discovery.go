package app

import (
	"context"

	"aardd/internal/discovery"
)

// FindSources replaces the dictionary set with the result of a scan of the
// configured dictionary directories. cb is called once, on the main loop,
// when the scan has been merged. It returns discovery.ErrDiscoveryRunning
// if a scan is already in progress.
func (a *App) FindSources(ctx context.Context, cb discovery.Callback) error {
	var err error
	if cerr := a.call(ctx, func() { err = a.startDiscovery(cb) }); cerr != nil {
		return cerr
	}
	return err
}

// DiscoveryRunning reports whether a scan is in progress.
func (a *App) DiscoveryRunning() bool { return a.discovery.Running() }

// startDiscovery runs on the main loop.
func (a *App) startDiscovery(cb discovery.Callback) error {
	return a.discovery.Start(func(added int, err error) {
		fields := map[string]any{"added": added}
		if err != nil {
			fields["error"] = err.Error()
		}
		a.events.Publish(Event{Name: EventDiscoveryFinished, Fields: fields})
		if cb != nil {
			cb(added, err)
		}
	})
}

func (a *App) startWatch(ctx context.Context) error {
	w, err := discovery.NewWatcher(a.cfg.DictionaryDirs, a.cfg.DictionaryPatterns, a.cfg.WatchDebounce, func() {
		a.loop.Post(func() {
			if a.closed || a.discovery.Running() {
				return
			}
			if err := a.startDiscovery(nil); err != nil {
				a.log.Warn().Err(err).Msg("watch-triggered discovery")
			}
		})
	}, a.cfg.Logger)
	if err != nil {
		return err
	}
	a.watcher = w
	return w.Start(ctx)
}
