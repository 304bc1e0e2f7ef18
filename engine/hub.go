package engine

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to bracket subscribers. Only bracket structure
// changes are published here; live score updates are intentionally not.
const (
	EventGroupPromoted   = "GROUP_PROMOTED"
	EventWinnerAdvanced  = "WINNER_ADVANCED"
	EventKnockoutSeeded  = "KNOCKOUT_SEEDED"
	EventKnockoutReset   = "KNOCKOUT_RESET"
	EventBracketsRescore = "BRACKETS_RESCORED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type BracketEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// Hub fans bracket events out to all connected websocket clients. There is
// a single feed: the knockout bracket is global state, not per-league.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.logger.Info("bracket feed client connected", slog.Int("clients", len(h.clients)))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				client.closeSend()
				delete(h.clients, client)
				h.logger.Info("bracket feed client disconnected", slog.Int("clients", len(h.clients)))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				client.mu.Lock()
				if !client.closed {
					select {
					case client.send <- message:
					default:
						// Slow client, drop the event rather than block the hub.
					}
				}
				client.mu.Unlock()
			}
			h.mu.RUnlock()
		}
	}
}

// Publish marshals and broadcasts a bracket event. Safe to call from any
// goroutine; a nil hub is a no-op so services can run without one in tests.
func (h *Hub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	raw, err := json.Marshal(BracketEvent{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal bracket event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		h.logger.Warn("bracket event dropped, broadcast buffer full", slog.String("type", eventType))
	}
}

// NewClient wraps an upgraded connection and registers it with the hub.
// Callers must start the pumps.
func (h *Hub) NewClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client
	return client
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// ReadPump drains (and discards) client messages so control frames are
// processed; the feed is one-directional.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("bracket feed read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
