// Package realtime implements a broadcast-only websocket hub. Handlers push
// user-changed events into the hub; every connected observer receives them.
// Delivery is fire-and-forget: a slow or dead observer is dropped, and
// broadcasting never blocks the request path.
package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Event names mirror the wire protocol the frontend listens for.
const (
	EventUserUpdated = "user-updated"
	EventUserDeleted = "user-deleted"
)

// Event is the broadcast payload.
type Event struct {
	Event  string `json:"event"`
	UserID uint   `json:"userId"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendBuf  = 8
	broadcastQueue = 64
)

type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans events out to connected clients. Run must be started exactly once
// before Serve or Broadcast are used.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	upgrader   websocket.Upgrader
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, broadcastQueue),
		upgrader: websocket.Upgrader{
			// The original service accepted any origin on the socket.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Run owns the client set; all membership changes go through its channels so
// no lock is needed.
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
		case ev := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Observer is not keeping up; cut it loose.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast queues an event for delivery. It never blocks: when the queue is
// full the event is dropped, which is acceptable for this best-effort
// channel.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("realtime queue full, dropping event", "event", ev.Event, "userId", ev.UserID)
	}
}

// Serve upgrades the request to a websocket connection and registers it with
// the hub.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan Event, clientSendBuf)}
	h.register <- c
	go c.writePump(h)
	go c.readPump(h)
}

// writePump serializes queued events to the connection and keeps it alive
// with pings.
func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the channel is broadcast-only. Reading
// is still required to process control frames and notice disconnects.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
