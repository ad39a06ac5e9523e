package app

import (
	"context"
	"fmt"
	"path/filepath"

	"aardd/internal/common/fsutil"
	"aardd/internal/descriptor"
	"aardd/internal/dict"
)

// Descriptors returns the dictionary descriptors in set order.
func (a *App) Descriptors() []*descriptor.SourceDescriptor { return a.sources.Items() }

// AllSources returns every dictionary published by the last rebuild.
func (a *App) AllSources() []dict.Source { return a.engine.Sources() }

// ActiveSources returns the published dictionaries whose descriptor is
// currently active, in set order.
func (a *App) ActiveSources() []dict.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]dict.Source, 0, len(a.published))
	for _, p := range a.published {
		if p.desc.Active() {
			out = append(out, p.src)
		}
	}
	return out
}

// ResolveSource finds a published dictionary by id or URI.
func (a *App) ResolveSource(idOrURI string) (dict.Source, error) {
	if s := a.engine.FindSource(idOrURI); s != nil {
		return s, nil
	}
	return nil, ErrSourceNotFound(idOrURI)
}

// AddSource probes the dictionary file at path and appends it to the set.
func (a *App) AddSource(ctx context.Context, path string) (*descriptor.SourceDescriptor, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if p, err = filepath.Abs(p); err != nil {
		return nil, err
	}
	if !fsutil.PathExists(p) {
		return nil, fmt.Errorf("add dictionary: no such file %s", p)
	}
	info, err := dict.ReadInfo(p)
	if err != nil {
		return nil, fmt.Errorf("add dictionary: %w", err)
	}
	label := info.Label
	if label == "" {
		label = filepath.Base(p)
	}
	d := descriptor.NewSourceDescriptor(info.ID, p, label, a.cfg.Opener)
	var added bool
	if err := a.call(ctx, func() { added = a.sources.Add(d) }); err != nil {
		return nil, err
	}
	if !added {
		return nil, ErrSourceExists(info.ID)
	}
	return d, nil
}

// RemoveSource removes a dictionary from the set and closes it.
func (a *App) RemoveSource(ctx context.Context, id string) error {
	var (
		removed *descriptor.SourceDescriptor
		ok      bool
	)
	err := a.call(ctx, func() {
		removed, ok = a.sources.Remove(id)
		if ok {
			if cerr := removed.Close(); cerr != nil {
				a.log.Warn().Str("dictionary", id).Err(cerr).Msg("close removed dictionary")
			}
		}
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrSourceNotFound(id)
	}
	return nil
}

// SetSourceActive toggles whether a dictionary takes part in general
// lookups.
func (a *App) SetSourceActive(ctx context.Context, id string, active bool) error {
	var ok bool
	if err := a.call(ctx, func() { ok = a.sources.SetActive(id, active) }); err != nil {
		return err
	}
	if !ok {
		return ErrSourceNotFound(id)
	}
	return nil
}

// Random returns a random entry from any published dictionary.
func (a *App) Random(ctx context.Context) (dict.Entry, error) {
	return a.engine.FindRandom(ctx)
}

// ContentURL returns the server-relative content path of e.
func (a *App) ContentURL(e dict.Entry) string { return dict.ContentURL(e) }

// URL returns the absolute content URL of e on the bound server, or ""
// before the server is bound.
func (a *App) URL(e dict.Entry) string {
	addr := a.binding.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr + dict.ContentURL(e)
}

// FindIn runs a preferred-source lookup: a short, strict match list that
// consults preferredID first. Which other dictionaries take part depends
// on the preferred policy.
func (a *App) FindIn(ctx context.Context, query, preferredID string) ([]dict.Entry, error) {
	var sources []dict.Source
	var preferred dict.Source
	if a.cfg.PreferredPolicy == PolicyActive {
		sources = a.ActiveSources()
		for _, s := range sources {
			if s.ID() == preferredID {
				preferred = s
			}
		}
	} else {
		sources = a.engine.Sources()
		preferred = a.engine.Source(preferredID)
	}
	return a.coord.FindPreferred(ctx, query, preferred, sources)
}
