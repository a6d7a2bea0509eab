// Package server tracks the connected players of a multi-connection host
// (SSH or web) so they can be told about shutdowns and drained cleanly.
// Every connection plays its own session; nothing is shared between them.
package server

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// ClientEvent represents an event sent from the hub to a client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientHandle represents a client's registration with the hub.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client (shutdown)
	Joined   time.Time
}

// Hub is the registry of connected clients. Safe for concurrent use.
type Hub struct {
	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int
	logger       *log.Logger
}

// NewHub creates an empty hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		logger:       logger,
	}
}

// Register adds a client and returns its handle.
func (h *Hub) Register(username string) *ClientHandle {
	h.mu.Lock()
	id := h.nextClientID
	h.nextClientID++
	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
		Joined:   time.Now(),
	}
	h.clients[id] = handle
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered", "id", id, "user", username, "clients", count)
	return handle
}

// Unregister removes a client. Unknown ids are ignored.
func (h *Hub) Unregister(clientID int) {
	h.mu.Lock()
	handle, ok := h.clients[clientID]
	delete(h.clients, clientID)
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.logger.Info("client unregistered", "id", clientID, "user", handle.Username,
		"played", time.Since(handle.Joined).Round(time.Second), "clients", count)
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown notifies all connected clients and waits for them to disconnect,
// up to the given timeout. Reports whether every client left in time.
func (h *Hub) Shutdown(timeout time.Duration) bool {
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	notified := len(h.clients)
	h.mu.RUnlock()

	h.logger.Info("shutdown broadcast", "clients", notified, "timeout", timeout)
	if notified == 0 {
		return true
	}

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			h.logger.Warn("shutdown timed out", "remaining", h.Count())
			return false
		case <-ticker.C:
			if h.Count() == 0 {
				return true
			}
		}
	}
}
