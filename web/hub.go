package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Hub fans status updates out to the connected WebSocket clients.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*client]bool),
	}
}

// Run owns the client set; all membership changes and sends go through
// this loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client; drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues a status update for every client.
func (h *Hub) Broadcast(st Status) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

// handleWebSocket upgrades the connection and ties it into the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.hub.register <- c

	// Send the current status immediately so the page doesn't wait for
	// the next transition.
	if data, err := json.Marshal(s.ctrl.StatusSnapshot()); err == nil {
		c.send <- data
	}

	go c.writeLoop()
	go c.readLoop(s.hub)
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readLoop discards inbound messages; it exists to detect disconnects.
func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
