// Package websocket pushes roster change events to open browser sessions so
// their client grid can refresh.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event names sent to browsers.
const (
	ClientCreated      = "client_created"
	ClientDead         = "client_dead"
	RequirementCreated = "requirement_created"
	ScheduleCreated    = "schedule_created"
	RevenueCreated     = "revenue_created"
)

// Message is one change notification. ID is the new record and ClientID the
// roster row it belongs to.
type Message struct {
	Type     string    `json:"type"`
	ID       int64     `json:"id,omitempty"`
	ClientID int64     `json:"client_id,omitempty"`
	At       time.Time `json:"at"`
}

func NewMessage(typ string, id, clientID int64) Message {
	return Message{Type: typ, ID: id, ClientID: clientID, At: time.Now().UTC()}
}

// Broadcaster is what handlers publish through.
type Broadcaster interface {
	Broadcast(Message)
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", "clients", n)
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Slow clients miss
// messages rather than block the sender.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropped message for slow client", "type", msg.Type)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
