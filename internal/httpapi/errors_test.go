package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"aardd/internal/app"
	"aardd/internal/dict"
	"aardd/internal/discovery"
	"aardd/internal/lookup"
	"aardd/pkg/types"
)

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{app.ErrSourceNotFound("x"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", dict.ErrNotFound), http.StatusNotFound},
		{dict.ErrEmpty, http.StatusNotFound},
		{app.ErrSourceExists("x"), http.StatusConflict},
		{app.ErrLookupCanceled("a", "ab"), http.StatusConflict},
		{discovery.ErrDiscoveryRunning, http.StatusConflict},
		{app.ErrClosed, http.StatusServiceUnavailable},
		{mockHTTPError{"teapot", http.StatusTeapot}, http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestWriteError_Payload(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	writeError(w, r, app.ErrSourceExists("d1"))
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d", w.Code)
	}
	e := decode[types.ErrorResponse](t, w)
	if e.Code != http.StatusConflict || e.Error != "dictionary already added: d1" {
		t.Fatalf("unexpected payload %+v", e)
	}
}

// supersededService fails every waited lookup as superseded.
type supersededService struct {
	Service
}

func (supersededService) Result() *lookup.Result { return nil }

func (supersededService) LookupAndWait(_ context.Context, q string) (*lookup.Result, error) {
	return nil, app.ErrLookupCanceled(q, q+"x")
}

func TestLookup_SupersededIsConflict(t *testing.T) {
	w := do(t, NewMux(supersededService{}, nil), http.MethodGet, "/lookup?q=x", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
