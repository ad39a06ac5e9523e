//go:build !swagger

package httpapi

import (
	"net/http"
	"testing"
)

func TestMountSwagger_NoOp(t *testing.T) {
	a := newTestApp(t, nil)
	w := do(t, NewMux(a, nil), http.MethodGet, "/swagger/index.html", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
