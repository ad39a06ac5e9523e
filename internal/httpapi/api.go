package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"aardd/internal/app"
	"aardd/internal/descriptor"
	"aardd/internal/dict"
	"aardd/pkg/types"
)

// decodeJSON enforces the JSON content type and body size limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *handlers) toEntries(es []dict.Entry) []types.Entry {
	out := make([]types.Entry, len(es))
	for i, e := range es {
		out[i] = h.toEntry(e)
	}
	return out
}

func (h *handlers) toEntry(e dict.Entry) types.Entry {
	return types.Entry{
		SourceID:   e.SourceID,
		Key:        e.Key,
		BlobID:     e.BlobID,
		Fragment:   e.Fragment,
		ContentURL: dict.ContentURL(e),
		URL:        h.svc.URL(e),
	}
}

func toSource(d *descriptor.SourceDescriptor) types.Source {
	return types.Source{
		ID:     d.ID,
		Label:  d.Label,
		Path:   d.Path,
		Active: d.Active(),
		Open:   d.Source() != nil,
		Error:  d.LastError(),
	}
}

func toBookmarks(vs []app.BlobView) []types.Bookmark {
	out := make([]types.Bookmark, len(vs))
	for i, v := range vs {
		out[i] = types.Bookmark{
			ID:         v.ID,
			ContentURL: v.ContentURL,
			SourceID:   v.SourceID,
			Key:        v.Key,
			Available:  v.Available,
			CreatedAt:  v.CreatedAt,
		}
	}
	return out
}

// lookup godoc
// @Summary      Look up entries
// @Description  With q, starts a lookup (canceling the one in flight) and waits for it. Without q, pages through the current result.
// @Tags         lookup
// @Produce      json
// @Param        q       query  string  false  "Query"
// @Param        limit   query  int     false  "Page size"
// @Param        offset  query  int     false  "Entries to skip"
// @Success      200  {object}  types.LookupResponse
// @Failure      409  {object}  types.ErrorResponse
// @Router       /lookup [get]
func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	limit, ok1 := intParam(r, "limit", defaultPageSize)
	offset, ok2 := intParam(r, "offset", 0)
	if !ok1 || !ok2 {
		writeJSONError(w, http.StatusBadRequest, "limit and offset must be non-negative integers")
		return
	}
	limit, offset = min(limit, maxLookupLimit), min(offset, maxLookupLimit)
	res := h.svc.Result()
	if r.URL.Query().Has("q") {
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		var err error
		if res, err = h.svc.LookupAndWait(ctx, r.URL.Query().Get("q")); err != nil {
			if r.Context().Err() != nil {
				return
			}
			writeError(w, r, err)
			return
		}
	}
	if res == nil {
		writeJSON(w, http.StatusOK, types.LookupResponse{Query: h.svc.Query(), Entries: []types.Entry{}, Exhausted: true})
		return
	}
	page := res.Entries(offset + limit)
	if err := res.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			// the dictionaries behind this result were reloaded
			writeJSONError(w, http.StatusConflict, "lookup result expired: "+res.Query())
			return
		}
		writeError(w, r, err)
		return
	}
	if offset > len(page) {
		offset = len(page)
	}
	if ev := requestEvent(r, LevelDebug); ev != nil {
		ev.Str("query", res.Query()).Int("entries", len(page)-offset).Msg("lookup page")
	}
	writeJSON(w, http.StatusOK, types.LookupResponse{
		Query:     res.Query(),
		Entries:   h.toEntries(page[offset:]),
		Exhausted: res.Exhausted(),
	})
}

// lookupPreferred godoc
// @Summary      Preferred-dictionary lookup
// @Description  Short, strict match list that consults the given dictionary first.
// @Tags         lookup
// @Produce      json
// @Param        q       query  string  true   "Query"
// @Param        source  query  string  false  "Preferred dictionary id"
// @Success      200  {object}  types.LookupResponse
// @Failure      400  {object}  types.ErrorResponse
// @Router       /lookup/preferred [get]
func (h *handlers) lookupPreferred(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSONError(w, http.StatusBadRequest, "q is required")
		return
	}
	es, err := h.svc.FindIn(r.Context(), q, r.URL.Query().Get("source"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.LookupResponse{Query: q, Entries: h.toEntries(es), Exhausted: true})
}

// random godoc
// @Summary  Random entry
// @Tags     lookup
// @Produce  json
// @Success  200  {object}  types.Entry
// @Failure  404  {object}  types.ErrorResponse
// @Router   /random [get]
func (h *handlers) random(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Random(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toEntry(e))
}

// listSources godoc
// @Summary  List dictionaries
// @Tags     sources
// @Produce  json
// @Success  200  {object}  types.SourcesResponse
// @Router   /sources [get]
func (h *handlers) listSources(w http.ResponseWriter, r *http.Request) {
	ds := h.svc.Descriptors()
	out := make([]types.Source, len(ds))
	for i, d := range ds {
		out[i] = toSource(d)
	}
	writeJSON(w, http.StatusOK, types.SourcesResponse{Sources: out})
}

// addSource godoc
// @Summary  Add a dictionary file
// @Tags     sources
// @Accept   json
// @Produce  json
// @Param    body  body  types.AddSourceRequest  true  "Dictionary path"
// @Success  201  {object}  types.Source
// @Failure  409  {object}  types.ErrorResponse
// @Router   /sources [post]
func (h *handlers) addSource(w http.ResponseWriter, r *http.Request) {
	var req types.AddSourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeJSONError(w, http.StatusBadRequest, "path is required")
		return
	}
	d, err := h.svc.AddSource(r.Context(), req.Path)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			// unreadable or not a dictionary
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSource(d))
}

// removeSource godoc
// @Summary  Remove a dictionary
// @Tags     sources
// @Param    id  path  string  true  "Dictionary id"
// @Success  204
// @Failure  404  {object}  types.ErrorResponse
// @Router   /sources/{id} [delete]
func (h *handlers) removeSource(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveSource(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setSourceActive godoc
// @Summary  Toggle whether a dictionary takes part in lookups
// @Tags     sources
// @Accept   json
// @Param    id    path  string                  true  "Dictionary id"
// @Param    body  body  types.SetActiveRequest  true  "Active flag"
// @Success  204
// @Failure  404  {object}  types.ErrorResponse
// @Router   /sources/{id}/active [put]
func (h *handlers) setSourceActive(w http.ResponseWriter, r *http.Request) {
	var req types.SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetSourceActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// discover godoc
// @Summary      Rediscover dictionaries
// @Description  Clears the dictionary list and scans the configured directories. Only one scan runs at a time.
// @Tags         sources
// @Produce      json
// @Success      202  {object}  types.DiscoverResponse
// @Failure      409  {object}  types.ErrorResponse
// @Router       /discover [post]
func (h *handlers) discover(w http.ResponseWriter, r *http.Request) {
	err := h.svc.FindSources(r.Context(), func(added int, err error) {
		if err != nil {
			logger().Warn().Err(err).Int("added", added).Msg("discovery finished with error")
		}
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, types.DiscoverResponse{Started: true})
}

// listBookmarks godoc
// @Summary  List bookmarks
// @Tags     bookmarks
// @Produce  json
// @Success  200  {object}  types.BookmarksResponse
// @Router   /bookmarks [get]
func (h *handlers) listBookmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.BookmarksResponse{Items: toBookmarks(h.svc.Bookmarks())})
}

// addBookmark godoc
// @Summary  Bookmark an entry
// @Tags     bookmarks
// @Accept   json
// @Produce  json
// @Param    body  body  types.BookmarkRequest  true  "Content URL"
// @Success  201  {object}  types.Bookmark
// @Failure  400  {object}  types.ErrorResponse
// @Router   /bookmarks [post]
func (h *handlers) addBookmark(w http.ResponseWriter, r *http.Request) {
	var req types.BookmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.AddBookmark(r.Context(), req.ContentURL)
	if err != nil {
		if errors.Is(err, app.ErrClosed) {
			writeError(w, r, err)
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	_, rerr := h.svc.ResolveSource(b.SourceID)
	out := toBookmarks([]app.BlobView{{BlobDescriptor: b, Available: rerr == nil}})
	writeJSON(w, http.StatusCreated, out[0])
}

// removeBookmark godoc
// @Summary  Remove a bookmark
// @Tags     bookmarks
// @Param    url  query  string  true  "Content URL"
// @Success  204
// @Failure  404  {object}  types.ErrorResponse
// @Router   /bookmarks [delete]
func (h *handlers) removeBookmark(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		writeJSONError(w, http.StatusBadRequest, "url is required")
		return
	}
	removed, err := h.svc.RemoveBookmark(r.Context(), u)
	if err != nil {
		if errors.Is(err, app.ErrClosed) {
			writeError(w, r, err)
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !removed {
		writeJSONError(w, http.StatusNotFound, "not bookmarked")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// history godoc
// @Summary  Viewed entries, oldest first
// @Tags     bookmarks
// @Produce  json
// @Success  200  {object}  types.BookmarksResponse
// @Router   /history [get]
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.BookmarksResponse{Items: toBookmarks(h.svc.History())})
}
