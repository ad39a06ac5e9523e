package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"aardd/internal/app"
	"aardd/pkg/types"
)

// Viewer message types sent by the server.
const (
	MsgLookupStarted  = "lookup_started"
	MsgLookupCanceled = "lookup_canceled"
	MsgLookupFinished = "lookup_finished"
	MsgError          = "error"

	// MsgLookup is the one message type clients send.
	MsgLookup = "lookup"
)

const viewerSendBuffer = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Hub fans application events out to connected viewers. It implements
// app.EventPublisher.
type Hub struct {
	mu    sync.RWMutex
	conns map[*viewerConn]struct{}
}

func NewHub() *Hub { return &Hub{conns: make(map[*viewerConn]struct{})} }

// Publish never blocks; slow viewers drop events.
func (h *Hub) Publish(e app.Event) {
	msg := types.ViewerMessage{Type: e.Name, SourceID: e.SourceID, Fields: e.Fields}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.enqueue(msg)
	}
}

// Len returns the number of registered viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) add(c *viewerConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *viewerConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// viewerConn is one websocket viewer. It is a viewer.Handle (the viewer
// stack closes it on eviction) and a lookup.Listener.
type viewerConn struct {
	conn *websocket.Conn
	send chan types.ViewerMessage
	done chan struct{}
	once sync.Once
}

func newViewerConn(conn *websocket.Conn) *viewerConn {
	return &viewerConn{
		conn: conn,
		send: make(chan types.ViewerMessage, viewerSendBuffer),
		done: make(chan struct{}),
	}
}

func (c *viewerConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *viewerConn) enqueue(m types.ViewerMessage) {
	select {
	case <-c.done:
	case c.send <- m:
	default:
		logger().Debug().Str("type", m.Type).Msg("viewer too slow, dropping message")
	}
}

func (c *viewerConn) LookupStarted(q string) {
	c.enqueue(types.ViewerMessage{Type: MsgLookupStarted, Query: q})
}

func (c *viewerConn) LookupCanceled(q string) {
	c.enqueue(types.ViewerMessage{Type: MsgLookupCanceled, Query: q})
}

func (c *viewerConn) LookupFinished(q string) {
	c.enqueue(types.ViewerMessage{Type: MsgLookupFinished, Query: q})
}

func (c *viewerConn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case m := <-c.send:
			if err := c.conn.WriteJSON(m); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

// viewer godoc
// @Summary      Viewer websocket
// @Description  Streams lookup progress and application events as types.ViewerMessage frames. Clients may send {"type":"lookup","query":...}. At most three viewers stay open; the oldest is closed when a fourth connects.
// @Tags         viewer
// @Success      101
// @Router       /viewer [get]
func (h *handlers) viewer(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger().Warn().Err(err).Msg("viewer upgrade")
		return
	}
	vc := newViewerConn(conn)
	if err := h.svc.AddLookupListener(r.Context(), vc); err != nil {
		_ = vc.Close()
		return
	}
	viewersConnected.Inc()
	if h.hub != nil {
		h.hub.add(vc)
	}
	h.svc.PushViewer(vc)
	defer func() {
		if h.hub != nil {
			h.hub.remove(vc)
		}
		_ = h.svc.RemoveLookupListener(context.Background(), vc)
		h.svc.PopViewer(vc)
		_ = vc.Close()
		viewersConnected.Dec()
	}()
	go vc.writeLoop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger().Debug().Err(err).Msg("viewer read")
			}
			return
		}
		var msg types.ViewerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			vc.enqueue(types.ViewerMessage{Type: MsgError, Fields: map[string]any{"error": "invalid message format"}})
			continue
		}
		switch msg.Type {
		case MsgLookup:
			if err := h.svc.Lookup(serverBaseCtx, msg.Query); err != nil {
				vc.enqueue(types.ViewerMessage{Type: MsgError, Query: msg.Query, Fields: map[string]any{"error": err.Error()}})
			}
		default:
			vc.enqueue(types.ViewerMessage{Type: MsgError, Fields: map[string]any{"error": "unknown message type: " + msg.Type}})
		}
	}
}
