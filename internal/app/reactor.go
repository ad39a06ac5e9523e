package app

import (
	"time"

	"aardd/internal/dict"
)

// rebuild runs on the main loop after every source set change. It empties
// the engine, closes every previously opened dictionary, reopens the set in
// order and republishes it, then replays the last query.
func (a *App) rebuild() {
	if a.closed {
		return
	}
	start := time.Now()
	a.coord.ClearResult()
	a.engine.SetSources(nil)

	a.mu.Lock()
	prev := a.published
	a.published = nil
	a.mu.Unlock()
	for _, p := range prev {
		if err := p.desc.Close(); err != nil {
			a.log.Warn().Str("dictionary", p.desc.ID).Err(err).Msg("close dictionary")
		}
	}
	items := a.sources.Items()
	for _, d := range items {
		if err := d.Close(); err != nil {
			a.log.Warn().Str("dictionary", d.ID).Err(err).Msg("close dictionary")
		}
	}

	next := make([]published, 0, len(items))
	srcs := make([]dict.Source, 0, len(items))
	failed := 0
	for _, d := range items {
		s, err := d.Open()
		if err != nil {
			failed++
			openFailures.Inc()
			a.log.Warn().Str("dictionary", d.ID).Str("path", d.Path).Err(err).Msg("dictionary unavailable")
			a.events.Publish(Event{
				Name:     EventSourceOpenFailed,
				SourceID: d.ID,
				Fields:   map[string]any{"path": d.Path, "error": err.Error()},
			})
			continue
		}
		next = append(next, published{desc: d, src: s})
		srcs = append(srcs, s)
	}
	a.mu.Lock()
	a.published = next
	a.mu.Unlock()
	a.engine.SetSources(srcs)

	rebuildsTotal.Inc()
	rebuildDuration.Observe(time.Since(start).Seconds())
	sourcesOpen.Set(float64(len(srcs)))
	a.log.Debug().Int("opened", len(srcs)).Int("failed", failed).Msg("dictionaries rebuilt")
	a.events.Publish(Event{
		Name:   EventSourcesRebuilt,
		Fields: map[string]any{"opened": len(srcs), "failed": failed},
	})

	a.coord.Lookup(a.coord.Query(), true)
	a.bookmarks.NotifyChanged()
	a.history.NotifyChanged()
}
