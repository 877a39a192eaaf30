// Package ws pushes task change events to a user's live browser sessions.
// Events fan out only to connections authenticated as the task's owner;
// there is no cross-user traffic.
package ws

import (
	"encoding/json"
	"sync"

	"tasktracker/internal/logger"
)

// Event is one task change, as sent on the wire.
type Event struct {
	Type string `json:"type"` // task_created | task_updated | task_deleted
	Task any    `json:"task,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
	EventTaskDeleted = "task_deleted"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{} // user id -> live connections
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.userID, "connections", len(set))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Publish sends the event to every live connection of userID. A client
// whose send buffer is full is dropped rather than allowed to block the
// request path.
func (h *Hub) Publish(userID int64, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws event marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	set := h.clients[userID]
	var slow []*Client
	for c := range set {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws client too slow, dropping", "user_id", c.userID)
		h.unregister(c)
		_ = c.conn.Close()
	}
}
