package descriptor

import (
	"time"

	"github.com/google/uuid"

	"aardd/internal/dict"
)

// BlobDescriptor points at one dictionary entry by its content URL. It is the
// element type of bookmark and history lists.
type BlobDescriptor struct {
	ID         string
	SourceID   string
	Key        string
	BlobID     int64
	Fragment   string
	ContentURL string
	CreatedAt  time.Time
}

func (b *BlobDescriptor) Identity() string { return b.ContentURL }

// NewBlobDescriptor parses a content URL into a fresh descriptor.
func NewBlobDescriptor(contentURL string) (*BlobDescriptor, error) {
	e, err := dict.ParseContentURL(contentURL)
	if err != nil {
		return nil, err
	}
	return &BlobDescriptor{
		ID:         uuid.NewString(),
		SourceID:   e.SourceID,
		Key:        e.Key,
		BlobID:     e.BlobID,
		Fragment:   e.Fragment,
		ContentURL: dict.ContentURL(e),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// BlobList is a bookmark or history list. A positive MaxSize bounds it and
// Record evicts the oldest entries beyond it.
type BlobList struct {
	*List[*BlobDescriptor]
	MaxSize int
}

// NewBlobList returns an empty list bounded by maxSize (0 = unbounded).
func NewBlobList(maxSize int) *BlobList {
	return &BlobList{List: NewList[*BlobDescriptor](), MaxSize: maxSize}
}

// Record adds b as the most recent entry, moving an existing entry with the
// same content URL to the end. It returns the evicted descriptors.
func (l *BlobList) Record(b *BlobDescriptor) []*BlobDescriptor {
	l.mu.Lock()
	if i := l.indexLocked(b.Identity()); i >= 0 {
		l.items = append(l.items[:i], l.items[i+1:]...)
	}
	l.items = append(l.items, b)
	var evicted []*BlobDescriptor
	if l.MaxSize > 0 && len(l.items) > l.MaxSize {
		n := len(l.items) - l.MaxSize
		evicted = append(evicted, l.items[:n]...)
		l.items = append([]*BlobDescriptor(nil), l.items[n:]...)
	}
	l.mu.Unlock()
	l.NotifyChanged()
	return evicted
}
