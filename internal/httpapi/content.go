package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"aardd/internal/dict"
)

const (
	typeHTML     = "text/html; charset=utf-8"
	typeMarkdown = "text/markdown"
)

var markdown = goldmark.New()

// assetTags are injected into every HTML entry served.
var assetTags = []byte(`<script src="/assets/styleswitcher.js"></script><script src="/assets/userstyle.js"></script>`)

// content godoc
// @Summary      Dictionary entry content
// @Description  Serves the blob behind a content URL. Markdown is rendered to HTML; HTML gets the style scripts injected. The entry is recorded in history.
// @Tags         content
// @Produce      html
// @Param        sourceID  path   string  true   "Dictionary id or URI"
// @Param        blob      query  int     false  "Blob id; the first entry with the key when absent"
// @Success      200
// @Failure      404  {object}  types.ErrorResponse
// @Router       /content/{sourceID}/{key} [get]
func (h *handlers) content(w http.ResponseWriter, r *http.Request) {
	e, err := dict.ParseContentURL(r.URL.RequestURI())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	src, err := h.svc.ResolveSource(e.SourceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e.SourceID = src.ID()
	if e.BlobID == 0 {
		es, err := src.Lookup(r.Context(), e.Key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if len(es) == 0 {
			writeError(w, r, dict.ErrNotFound)
			return
		}
		e.BlobID = es[0].BlobID
	}
	c, err := src.Content(r.Context(), e.BlobID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	kind := "raw"
	ctype, body := c.Type, c.Data
	switch {
	case strings.HasPrefix(ctype, typeMarkdown):
		var buf bytes.Buffer
		if err := markdown.Convert(body, &buf); err != nil {
			writeError(w, r, err)
			return
		}
		kind, ctype, body = "markdown", typeHTML, injectAssets(buf.Bytes())
	case strings.HasPrefix(ctype, "text/html"):
		kind, body = "html", injectAssets(body)
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	contentServedTotal.WithLabelValues(kind).Inc()

	if err := h.svc.RecordView(dict.ContentURL(e)); err != nil {
		logger().Warn().Err(err).Str("key", e.Key).Msg("record history")
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// injectAssets inserts the style scripts before </head>, or before </body>
// when there is no head, or appends them.
func injectAssets(doc []byte) []byte {
	lower := bytes.ToLower(doc)
	at := bytes.Index(lower, []byte("</head>"))
	if at < 0 {
		at = bytes.LastIndex(lower, []byte("</body>"))
	}
	if at < 0 {
		return append(append([]byte(nil), doc...), assetTags...)
	}
	out := make([]byte, 0, len(doc)+len(assetTags))
	out = append(out, doc[:at]...)
	out = append(out, assetTags...)
	return append(out, doc[at:]...)
}

// ContentServer serves a handler on a loopback port. It satisfies
// bootstrap.Starter: Start fails when the port cannot be bound.
type ContentServer struct {
	handler http.Handler

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// NewContentServer returns a server for h. Nothing is bound until Start.
func NewContentServer(h http.Handler) *ContentServer {
	return &ContentServer{handler: h}
}

// Start binds host:port and serves in the background.
func (s *ContentServer) Start(host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("content server already started")
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serverBaseCtx },
	}
	s.srv, s.ln = srv, ln
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger().Error().Err(err).Msg("content server stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *ContentServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// ContentURL returns the server-relative path serving e.
func (s *ContentServer) ContentURL(e dict.Entry) string { return dict.ContentURL(e) }

// Shutdown gracefully stops the server. It is a no-op before Start.
func (s *ContentServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
