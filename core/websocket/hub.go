package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"bookstack/core/router"

	"github.com/gorilla/websocket"
)

// Event is a message pushed to connected clients, used to relay background
// job status (CSV imports) to the UI.
type Event struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans events out to all connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// InitWebSocketModule registers the /ws endpoint on the group and returns
// the hub.
func InitWebSocketModule(group *router.RouterGroup) *Hub {
	hub := &Hub{clients: make(map[*client]bool)}
	group.GET("/ws", hub.handleConnection)
	return hub
}

// Broadcast sends an event to every connected client. Slow clients are
// disconnected rather than blocking the sender.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) handleConnection(ctx *router.Context) error {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)

	return nil
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; the hub is push-only. It exists to
// notice closed connections and unregister the client.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
