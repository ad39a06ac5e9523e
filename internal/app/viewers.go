package app

import "aardd/internal/viewer"

// PushViewer records h as the newest open viewer, closing the oldest one
// beyond viewer.Capacity.
func (a *App) PushViewer(h viewer.Handle) { a.viewers.Push(h) }

// PopViewer forgets h. Unknown handles are ignored.
func (a *App) PopViewer(h viewer.Handle) { a.viewers.Pop(h) }

// Viewers returns the number of open viewers.
func (a *App) Viewers() int { return a.viewers.Len() }
