package feed

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks websocket subscribers and fans row-change events out to the
// clients watching the affected list. Subscriptions are list-scoped: a client
// only ever receives events for the list it subscribed to.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
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

// Broadcast delivers an event to every client subscribed to the given list.
func (h *Hub) Broadcast(listID int64, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.listID != listID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop to avoid blocking the writer
			h.logger.Warn("dropping event for slow client", "list_id", listID)
		}
	}
}

// SubscriberCount returns the number of clients watching the given list.
func (h *Hub) SubscriberCount(listID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if c.listID == listID {
			n++
		}
	}
	return n
}
