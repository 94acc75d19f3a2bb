package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

type message struct {
	pairingID string
	data      []byte
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	pairingID string
	send      chan []byte
}

// Hub delivers events to websocket clients connected for a pairing. It also
// implements Notifier for single-instance deployments.
type Hub struct {
	clients    map[string]map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan message
	done       chan struct{}
	connected  atomic.Int64
	upgrader   websocket.Upgrader
	now        func() time.Time
}

func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, sendBufferSize),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Run owns the client registry until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for pairingID, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, pairingID)
			}
			h.connected.Store(0)
			return

		case c := <-h.register:
			set, ok := h.clients[c.pairingID]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.pairingID] = set
			}
			set[c] = struct{}{}
			h.connected.Add(1)

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			for c := range h.clients[m.pairingID] {
				select {
				case c.send <- m.data:
				default:
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	set := h.clients[c.pairingID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.pairingID)
	}
	close(c.send)
	h.connected.Add(-1)
}

// Connected returns the number of live websocket clients.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

func (h *Hub) Publish(ctx context.Context, pairingID, event string, payload any) {
	data, err := encode(pairingID, event, payload, h.now())
	if err != nil {
		slog.Error("failed to encode event", "error", err, "event", event)
		return
	}
	h.broadcastRaw(pairingID, data)
}

func (h *Hub) broadcastRaw(pairingID string, data []byte) {
	select {
	case h.broadcast <- message{pairingID: pairingID, data: data}:
	case <-h.done:
	default:
		slog.Warn("event dropped, hub is saturated", "pairing_id", pairingID)
	}
}

// ServeWS upgrades the request and subscribes the connection to pairingID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, pairingID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:       h,
		conn:      conn,
		pairingID: pairingID,
		send:      make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket closed", "error", err, "pairing_id", c.pairingID)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
