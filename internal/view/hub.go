package view

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dupe-checker/internal/logging"
	"dupe-checker/internal/metrics"
	"dupe-checker/internal/pipeline"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is how many messages a client may fall behind before it is
	// disconnected.
	sendBuffer = 256
)

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans model changes out to websocket clients.
type Hub struct {
	model    *Model
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub that serves snapshots of model.
func NewHub(model *Model) *Hub {
	return &Hub{
		model: model,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// Dispatch applies ev to the model and broadcasts the result. Applying and
// sending happen under one lock so a connecting client never sees an event
// both in its snapshot and on the stream.
func (h *Hub) Dispatch(ev pipeline.Event) (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg, ok := h.model.Apply(ev)
	if !ok {
		return msg, false
	}
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
	return msg, true
}

func (h *Hub) sendLocked(c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		logging.Warn("WebSocket client %s too slow, disconnecting", c.conn.RemoteAddr())
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams messages until the client goes
// away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	snapshot := h.model.Snapshot()
	h.clients[c] = struct{}{}
	c.send <- Message{Type: TypeSnapshot, Snapshot: &snapshot}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	h.mu.Unlock()

	logging.Debug("WebSocket client connected: %s", conn.RemoteAddr())

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client input and unregisters the client on error.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c)
		h.mu.Unlock()
		logging.Debug("WebSocket client disconnected: %s", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
