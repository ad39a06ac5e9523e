package httpapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"aardd/internal/app"
	"aardd/pkg/types"
)

func dialViewer(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/viewer"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp.StatusCode != 101 {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readUntil reads frames until one has the wanted type and query.
func readUntil(t *testing.T, conn *websocket.Conn, typ, query string) types.ViewerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m types.ViewerMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read waiting for %s(%q): %v", typ, query, err)
		}
		if m.Type == typ && m.Query == query {
			return m
		}
	}
}

func TestViewer_LookupRoundTrip(t *testing.T) {
	a := newTestApp(t, nil, writeDict(t, t.TempDir(), "d1", fruit...))
	ts := httptest.NewServer(NewMux(a, NewHub()))
	defer ts.Close()
	conn := dialViewer(t, ts)

	if err := conn.WriteJSON(types.ViewerMessage{Type: MsgLookup, Query: "cherry"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, MsgLookupStarted, "cherry")
	readUntil(t, conn, MsgLookupFinished, "cherry")
	if a.Query() != "cherry" {
		t.Fatalf("query=%q", a.Query())
	}

	if err := conn.WriteJSON(types.ViewerMessage{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	m := readUntil(t, conn, MsgError, "")
	if !strings.Contains(m.Fields["error"].(string), "bogus") {
		t.Fatalf("unexpected error frame %+v", m)
	}
}

func TestViewer_ReceivesAppEvents(t *testing.T) {
	hub := NewHub()
	a := newTestApp(t, func(c *app.Config) { c.Events = hub })
	ts := httptest.NewServer(NewMux(a, hub))
	defer ts.Close()
	conn := dialViewer(t, ts)
	waitFor(t, "hub registration", func() bool { return hub.Len() == 1 })

	p := writeDict(t, t.TempDir(), "d9", fruit...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if _, err := a.AddSource(ctx, p); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m types.ViewerMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		if m.Type == app.EventSourcesRebuilt {
			return
		}
	}
}

func TestViewer_StackClosesOldest(t *testing.T) {
	hub := NewHub()
	a := newTestApp(t, nil)
	ts := httptest.NewServer(NewMux(a, hub))
	defer ts.Close()

	var conns []*websocket.Conn
	for i := 1; i <= 3; i++ {
		conns = append(conns, dialViewer(t, ts))
		n := i
		waitFor(t, "viewer push", func() bool { return a.Viewers() == n })
	}
	dialViewer(t, ts)

	// The first viewer is closed by the server.
	_ = conns[0].SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conns[0].ReadMessage(); err == nil {
		t.Fatalf("oldest viewer should have been closed")
	}
	waitFor(t, "hub cleanup", func() bool { return hub.Len() == 3 })
	if a.Viewers() != 3 {
		t.Fatalf("viewers=%d", a.Viewers())
	}
}

func TestViewer_DisconnectPops(t *testing.T) {
	a := newTestApp(t, nil)
	ts := httptest.NewServer(NewMux(a, nil))
	defer ts.Close()
	conn := dialViewer(t, ts)
	waitFor(t, "viewer push", func() bool { return a.Viewers() == 1 })
	_ = conn.Close()
	waitFor(t, "viewer pop", func() bool { return a.Viewers() == 0 })
}
