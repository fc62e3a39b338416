package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/scribbly/internal/metrics"
	"github.com/ayusman/scribbly/internal/server/api"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StateHandler pushes the live interaction state to WebSocket clients.
// Each client gets the state on connect and then whenever it changes.
type StateHandler struct {
	canvas   api.Canvas
	metrics  *metrics.Metrics
	interval time.Duration

	// clients maps each connection to the last message sent to it.
	// Once registered, a connection is written only by publish.
	clients map[*websocket.Conn][]byte
	mu      sync.Mutex
	write   func(*websocket.Conn, []byte) error

	done      chan struct{}
	closeOnce sync.Once
}

// NewStateHandler creates a StateHandler and starts its broadcast loop.
func NewStateHandler(c api.Canvas, m *metrics.Metrics, interval time.Duration) *StateHandler {
	h := &StateHandler{
		canvas:   c,
		metrics:  m,
		interval: interval,
		clients:  make(map[*websocket.Conn][]byte),
		write:    send,
		done:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	msg, err := h.snapshot()
	if err == nil {
		err = h.write(conn, msg)
	}
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = msg
	h.metrics.ClientConnected()
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Close stops the broadcast loop.
func (h *StateHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Clients returns the number of connected clients.
func (h *StateHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *StateHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		h.metrics.ClientDisconnected()
	}
}

func (h *StateHandler) snapshot() ([]byte, error) {
	return json.Marshal(api.NewStateResponse(h.canvas))
}

func send(conn *websocket.Conn, msg []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// broadcast publishes the state every interval until Close.
func (h *StateHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.publish()
		}
	}
}

// publish sends the state to every client whose last message differs.
// Writes happen outside h.mu so a slow client does not block connects.
func (h *StateHandler) publish() {
	h.mu.Lock()
	if len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	msg, err := h.snapshot()
	if err != nil {
		h.mu.Unlock()
		return
	}
	var pending []*websocket.Conn
	for conn, sent := range h.clients {
		if !bytes.Equal(sent, msg) {
			pending = append(pending, conn)
		}
	}
	h.mu.Unlock()

	var sent, dead []*websocket.Conn
	for _, conn := range pending {
		if err := h.write(conn, msg); err != nil {
			dead = append(dead, conn)
			continue
		}
		sent = append(sent, conn)
	}

	h.mu.Lock()
	for _, conn := range sent {
		if _, ok := h.clients[conn]; ok {
			h.clients[conn] = msg
		}
	}
	h.mu.Unlock()

	for _, conn := range dead {
		h.remove(conn)
		conn.Close()
	}
}
