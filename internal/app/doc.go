// Package app is the application context: one App value owns the source
// set, the search engine, the lookup coordinator, discovery, bookmarks and
// history, the viewer stack and the content server binding. It is split
// into small files by concern:
//
//   - app.go: App type, NewWithConfig, Start and Close.
//   - config.go: Config and package defaults.
//   - reactor.go: rebuild of the engine's source list on source set changes.
//   - sources.go: source set mutation and read accessors.
//   - lookups.go: lookup entry points and listener registration.
//   - bookmarks.go: bookmarks and history.
//   - discovery.go: discovery trigger and watch mode.
//   - viewers.go: viewer stack access.
//   - errors.go: error types and helpers.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: Prometheus collectors.
//
// Every mutation of shared state runs on the App's main loop. Exported
// methods may be called from any goroutine unless documented otherwise.
package app
