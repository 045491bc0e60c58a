// Package stream pushes rendered map frames and notices to WebSocket
// viewers.
//
// Go Learning Note — Fan-out with buffered channels:
// Every client owns a buffered send channel drained by its own write
// goroutine. Publishing only does a non-blocking send into each channel, so
// a slow viewer can never stall the animation loop; a viewer whose buffer
// is full is dropped instead.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"healthease/internal/render"
	"healthease/internal/sim"
)

const (
	MessageFrame  = "frame"
	MessageNotice = "notice"

	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is one WebSocket text frame.
type Message struct {
	Type   string              `json:"type"`
	Frame  *render.DisplayList `json:"frame,omitempty"`
	Notice *sim.Notice         `json:"notice,omitempty"`
}

type client struct {
	id   string
	send chan []byte
}

// Hub tracks connected viewers and broadcasts to all of them.
type Hub struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger.With().Str("component", "stream").Logger(),
		clients: make(map[*client]struct{}),
	}
}

// PublishFrame sends a rendered frame to every viewer.
func (h *Hub) PublishFrame(frame *render.DisplayList) {
	h.broadcast(Message{Type: MessageFrame, Frame: frame})
}

// PublishNotice sends a notice to every viewer.
func (h *Hub) PublishNotice(n sim.Notice) {
	h.broadcast(Message{Type: MessageNotice, Notice: &n})
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("encode message")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Str("client", c.id).Msg("dropping slow viewer")
		h.unregister(c)
	}
}

// Serve upgrades the request, sends the initial messages and then streams
// until the viewer disconnects. It returns once the connection is set up;
// the pumps keep running in their own goroutines.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial ...Message) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	for _, msg := range initial {
		if data, err := json.Marshal(msg); err == nil {
			c.send <- data
		}
	}
	if !h.register(c) {
		conn.Close()
		return nil
	}
	h.logger.Debug().Str("client", c.id).Str("remote", r.RemoteAddr).Msg("viewer connected")

	go h.writePump(c, conn)
	go h.readPump(c, conn)
	return nil
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every viewer. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump discards inbound messages; it exists to process control frames
// and notice the disconnect.
func (h *Hub) readPump(c *client, conn *websocket.Conn) {
	defer func() {
		h.unregister(c)
		conn.Close()
		h.logger.Debug().Str("client", c.id).Msg("viewer disconnected")
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
