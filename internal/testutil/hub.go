package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/camview/internal/socketio"
	"github.com/gorilla/websocket"
)

// Hub is an in-process socket.io hub speaking just enough of the protocol for
// transport tests: it completes the handshake, records what clients send and
// lets tests push events, pings and drops.
type Hub struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    []*websocket.Conn
	accepted int
	refuse   bool

	received chan string
	joined   chan struct{}
}

// NewHub starts a hub that is closed automatically when the test ends.
func NewHub(t *testing.T) *Hub {
	t.Helper()
	h := &Hub{
		t:        t,
		received: make(chan string, 64),
		joined:   make(chan struct{}, 8),
	}
	h.server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Close)
	return h
}

// URL returns the websocket address of the hub.
func (h *Hub) URL() string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/socket.io/?EIO=4&transport=websocket"
}

// RefuseNamespace makes subsequent handshakes answer with a connect error.
func (h *Hub) RefuseNamespace(refuse bool) {
	h.mu.Lock()
	h.refuse = refuse
	h.mu.Unlock()
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	open := `0{"sid":"engine-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(open)); err != nil {
		conn.Close()
		return
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}
	frame, err := socketio.DecodeFrame(msg)
	if err != nil || frame.Packet == nil || frame.Packet.Type != socketio.PacketConnect {
		conn.Close()
		return
	}
	h.mu.Lock()
	refuse := h.refuse
	h.mu.Unlock()
	if refuse {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`44{"message":"not allowed"}`))
		conn.Close()
		return
	}

	h.mu.Lock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"socket-sid"}`)); err != nil {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.conns = append(h.conns, conn)
	h.accepted++
	h.mu.Unlock()
	h.joined <- struct{}{}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case h.received <- string(msg):
		default:
			h.t.Logf("hub dropped inbound frame %q", msg)
		}
	}
}

// AwaitJoin blocks until a client has joined the namespace.
func (h *Hub) AwaitJoin(timeout time.Duration) {
	h.t.Helper()
	select {
	case <-h.joined:
	case <-time.After(timeout):
		h.t.Fatalf("timeout waiting for client to join")
	}
}

// Accepted reports how many sessions completed the handshake.
func (h *Hub) Accepted() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.accepted
}

// Emit sends an event to every connected client.
func (h *Hub) Emit(name string, payload interface{}) {
	h.t.Helper()
	frame, err := socketio.EncodeEvent(socketio.DefaultNamespace, name, payload)
	if err != nil {
		h.t.Fatalf("encode %s: %v", name, err)
	}
	h.SendRaw(string(frame))
}

// SendRaw writes a literal frame to every connected client.
func (h *Hub) SendRaw(frame string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
	}
}

// Ping sends an Engine.IO ping to every connected client.
func (h *Hub) Ping() {
	h.SendRaw(string(socketio.EncodeEngine(socketio.EnginePing)))
}

// DropAll closes every client connection without a close handshake.
func (h *Hub) DropAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		conn.Close()
	}
	h.conns = nil
}

// Next returns the next frame received from a client, skipping pongs unless
// wantPong is set.
func (h *Hub) Next(timeout time.Duration, wantPong bool) string {
	h.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-h.received:
			if msg == "3" && !wantPong {
				continue
			}
			return msg
		case <-deadline:
			h.t.Fatalf("timeout waiting for client frame")
			return ""
		}
	}
}

// Close shuts the hub down.
func (h *Hub) Close() {
	h.DropAll()
	h.server.Close()
}
