package app

import (
	"context"

	"aardd/internal/descriptor"
)

// BlobView is a bookmark or history entry plus whether its dictionary is
// currently published.
type BlobView struct {
	*descriptor.BlobDescriptor
	Available bool
}

// AddBookmark bookmarks the entry behind contentURL. Bookmarking twice is a
// no-op.
func (a *App) AddBookmark(ctx context.Context, contentURL string) (*descriptor.BlobDescriptor, error) {
	b, err := descriptor.NewBlobDescriptor(contentURL)
	if err != nil {
		return nil, err
	}
	var out *descriptor.BlobDescriptor
	err = a.call(ctx, func() {
		if existing, ok := a.bookmarks.Get(b.Identity()); ok {
			out = existing
			return
		}
		a.bookmarks.Add(b)
		out = b
	})
	return out, err
}

// RemoveBookmark removes the bookmark for contentURL. It reports whether a
// bookmark was removed.
func (a *App) RemoveBookmark(ctx context.Context, contentURL string) (bool, error) {
	b, err := descriptor.NewBlobDescriptor(contentURL)
	if err != nil {
		return false, err
	}
	var ok bool
	err = a.call(ctx, func() { _, ok = a.bookmarks.Remove(b.Identity()) })
	return ok, err
}

// IsBookmarked reports whether contentURL is bookmarked.
func (a *App) IsBookmarked(contentURL string) bool {
	b, err := descriptor.NewBlobDescriptor(contentURL)
	if err != nil {
		return false
	}
	return a.bookmarks.Contains(b.Identity())
}

// Bookmarks returns the bookmarks, oldest first.
func (a *App) Bookmarks() []BlobView { return a.views(a.bookmarks) }

// History returns viewed entries, oldest first.
func (a *App) History() []BlobView { return a.views(a.history) }

// RecordView adds contentURL to history, moving it to the end if present.
// It does not wait for the main loop.
func (a *App) RecordView(contentURL string) error {
	b, err := descriptor.NewBlobDescriptor(contentURL)
	if err != nil {
		return err
	}
	a.loop.Post(func() { a.history.Record(b) })
	return nil
}

func (a *App) views(l *descriptor.BlobList) []BlobView {
	items := l.Items()
	out := make([]BlobView, len(items))
	for i, b := range items {
		out[i] = BlobView{BlobDescriptor: b, Available: a.engine.Source(b.SourceID) != nil}
	}
	return out
}
