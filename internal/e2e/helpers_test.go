package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aardd/internal/app"
	"aardd/internal/dict"
	"aardd/internal/httpapi"
)

// createTempDictDir writes one dictionary with the given plain-text keys
// and returns its path.
func createTempDictDir(t *testing.T, id string, keys ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), id+dict.FileExt)
	w, err := dict.Create(p, dict.Info{ID: id, Label: "Dict " + id})
	if err != nil {
		t.Fatalf("create dictionary: %v", err)
	}
	for _, k := range keys {
		if _, err := w.Add(k, "text/plain", []byte("about "+k), ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

// freePort returns a port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

type daemon struct {
	app  *app.App
	srv  *httpapi.ContentServer
	base string
}

func (d *daemon) stop(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := d.app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// startDaemon wires the daemon the way `aardd serve` does and binds the
// content server on a real loopback port.
func startDaemon(t *testing.T, cfg app.Config) *daemon {
	t.Helper()
	hub := httpapi.NewHub()
	cfg.Events = hub
	cfg.Logger = zerolog.Nop()
	a, err := app.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httpapi.NewContentServer(httpapi.NewMux(a, hub))
	if err := a.Start(context.Background(), srv); err != nil {
		_ = a.Close()
		t.Fatalf("start: %v", err)
	}
	d := &daemon{app: a, srv: srv, base: "http://" + a.Binding().Addr()}
	return d
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
