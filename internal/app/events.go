package app

import "github.com/rs/zerolog"

// Event names.
const (
	EventSourceOpenFailed  = "source_open_failed"
	EventSourcesRebuilt    = "sources_rebuilt"
	EventDiscoveryFinished = "discovery_finished"
	EventBookmarksChanged  = "bookmarks_changed"
	EventHistoryChanged    = "history_changed"
)

// Event represents an application lifecycle event: a name, the dictionary
// it concerns (if any) and optional fields.
type Event struct {
	Name     string
	SourceID string
	Fields   map[string]any
}

// EventPublisher receives events from the App. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MultiPublisher fans an event out to several publishers.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

// LogPublisher writes every event to Logger at debug level.
type LogPublisher struct{ Logger zerolog.Logger }

func (p LogPublisher) Publish(e Event) {
	ev := p.Logger.Debug().Str("event", e.Name)
	if e.SourceID != "" {
		ev = ev.Str("dictionary", e.SourceID)
	}
	ev.Fields(e.Fields).Msg("event")
}
