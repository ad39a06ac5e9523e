package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"aardd/internal/app"
	"aardd/internal/dict"
	"aardd/internal/discovery"
	"aardd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case app.IsSourceNotFound(err), errors.Is(err, dict.ErrNotFound), errors.Is(err, dict.ErrEmpty):
		return http.StatusNotFound
	case app.IsSourceExists(err), app.IsLookupCanceled(err), errors.Is(err, discovery.ErrDiscoveryRunning):
		return http.StatusConflict
	case errors.Is(err, app.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its mapped status and logs server errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		if ev := requestEvent(r, LevelError); ev != nil {
			ev.Int("status", status).Err(err).Msg("request failed")
		}
	}
	writeJSONError(w, status, err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Warn().Err(err).Msg("encode response")
	}
}
