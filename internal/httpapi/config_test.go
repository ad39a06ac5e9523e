package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetMaxBodyBytes_DefaultOnNonPositive(t *testing.T) {
	SetMaxBodyBytes(10)
	if maxBodyBytes != 10 {
		t.Fatalf("got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default, got %d", maxBodyBytes)
	}
}

func TestSetPageSize(t *testing.T) {
	SetPageSize(7)
	if defaultPageSize != 7 {
		t.Fatalf("got %d", defaultPageSize)
	}
	SetPageSize(-1)
	if defaultPageSize != 50 {
		t.Fatalf("expected default, got %d", defaultPageSize)
	}
}

func TestCORS_Preflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://example.test"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	a := newTestApp(t, nil)
	r := NewMux(a, nil)

	req := httptest.NewRequest(http.MethodOptions, "/sources", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Fatalf("allow-origin=%q (status %d)", got, w.Code)
	}
}
