package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aardd/internal/app"
	"aardd/internal/descriptor"
	"aardd/internal/dict"
	"aardd/internal/discovery"
	"aardd/internal/lookup"
	"aardd/internal/viewer"
)

// Service defines the methods required by the HTTP API layer. *app.App
// implements it.
type Service interface {
	Lookup(ctx context.Context, query string) error
	LookupAndWait(ctx context.Context, query string) (*lookup.Result, error)
	Query() string
	Result() *lookup.Result
	FindIn(ctx context.Context, query, preferredID string) ([]dict.Entry, error)
	Random(ctx context.Context) (dict.Entry, error)
	URL(e dict.Entry) string
	ResolveSource(idOrURI string) (dict.Source, error)

	Descriptors() []*descriptor.SourceDescriptor
	AddSource(ctx context.Context, path string) (*descriptor.SourceDescriptor, error)
	RemoveSource(ctx context.Context, id string) error
	SetSourceActive(ctx context.Context, id string, active bool) error
	FindSources(ctx context.Context, cb discovery.Callback) error

	AddBookmark(ctx context.Context, contentURL string) (*descriptor.BlobDescriptor, error)
	RemoveBookmark(ctx context.Context, contentURL string) (bool, error)
	Bookmarks() []app.BlobView
	History() []app.BlobView
	RecordView(contentURL string) error

	AddLookupListener(ctx context.Context, l lookup.Listener) error
	RemoveLookupListener(ctx context.Context, l lookup.Listener) error
	PushViewer(h viewer.Handle)
	PopViewer(h viewer.Handle)

	UserStyle() string
	Ready() bool
}

var _ Service = (*app.App)(nil)

// NewMux builds the router serving the JSON API, dictionary content,
// assets and the viewer websocket. hub may be nil, in which case viewers
// receive lookup progress but no application events.
func NewMux(svc Service, hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	h := &handlers{svc: svc, hub: hub}

	// The websocket route must not be wrapped by Compress.
	r.With(inflightMiddleware).Get("/viewer", h.viewer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(inflightMiddleware)

		r.Get("/lookup", h.lookup)
		r.Get("/lookup/preferred", h.lookupPreferred)
		r.Get("/random", h.random)

		r.Get("/sources", h.listSources)
		r.Post("/sources", h.addSource)
		r.Delete("/sources/{id}", h.removeSource)
		r.Put("/sources/{id}/active", h.setSourceActive)
		r.Post("/discover", h.discover)

		r.Get("/bookmarks", h.listBookmarks)
		r.Post("/bookmarks", h.addBookmark)
		r.Delete("/bookmarks", h.removeBookmark)
		r.Get("/history", h.history)

		r.Get(dict.ContentPrefix+"{sourceID}/*", h.content)
		r.Get("/assets/{name}", h.asset)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

type handlers struct {
	svc Service
	hub *Hub
}
