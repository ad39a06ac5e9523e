package app

import (
	"context"

	"aardd/internal/lookup"
)

// AddLookupListener registers l for lookup start, cancel and finish
// notifications. Callbacks run on the main loop and must not block.
func (a *App) AddLookupListener(ctx context.Context, l lookup.Listener) error {
	return a.call(ctx, func() { a.coord.AddListener(l) })
}

// RemoveLookupListener unregisters l.
func (a *App) RemoveLookupListener(ctx context.Context, l lookup.Listener) error {
	return a.call(ctx, func() { a.coord.RemoveListener(l) })
}

// Lookup starts query in the background, canceling the one in flight.
func (a *App) Lookup(ctx context.Context, query string) error {
	return a.call(ctx, func() { a.coord.Lookup(query, true) })
}

// LookupAndWait starts query and waits until it publishes. It fails with an
// error satisfying IsLookupCanceled when a newer lookup supersedes it.
func (a *App) LookupAndWait(ctx context.Context, query string) (*lookup.Result, error) {
	type outcome struct {
		res        *lookup.Result
		canceledBy string
		canceled   bool
	}
	done := make(chan outcome, 1)
	started := false
	l := &lookup.ListenerFuncs{
		Started: func(string) { started = true },
		Canceled: func(by string) {
			if started {
				select {
				case done <- outcome{canceled: true, canceledBy: by}:
				default:
				}
			}
		},
		Finished: func(q string) {
			if started && q == query {
				select {
				case done <- outcome{res: a.coord.Result()}:
				default:
				}
			}
		},
	}
	err := a.call(ctx, func() {
		a.coord.AddListener(l)
		a.coord.Lookup(query, true)
	})
	if err != nil {
		return nil, err
	}
	defer a.loop.Post(func() { a.coord.RemoveListener(l) })

	select {
	case o := <-done:
		if o.canceled {
			return nil, ErrLookupCanceled(query, o.canceledBy)
		}
		return o.res, nil
	case <-a.loop.Done():
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LookupSync runs query on the main loop without the worker pool.
func (a *App) LookupSync(ctx context.Context, query string) (*lookup.Result, error) {
	var res *lookup.Result
	err := a.call(ctx, func() {
		a.coord.Lookup(query, false)
		res = a.coord.Result()
	})
	return res, err
}

// Query returns the last completed query.
func (a *App) Query() string { return a.coord.Query() }

// Result returns the current lookup result.
func (a *App) Result() *lookup.Result { return a.coord.Result() }
