package realtime

import (
	"log"
	"sync"
)

// Event names pushed over the websocket channel.
type Event string

const (
	EventNewMessage      Event = "newMessage"
	EventNewChat         Event = "newChat"
	EventMessagesRead    Event = "messagesRead"
	EventNewNotification Event = "newNotification"
)

// Envelope is the wire format for every pushed event.
type Envelope struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// Conn is the slice of *websocket.Conn the hub needs. Narrowed to an
// interface so tests can register fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub is the connection registry: it owns the userID -> connections map and
// is the only place that touches it. A user may hold several connections at
// once (multiple devices), and delivery is best-effort — the persisted
// record is the durable source of truth, the push is a low-latency hint.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]bool // userID hex -> live connections
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[Conn]bool)}
}

// Register adds a connection for a user.
func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[Conn]bool)
	}
	h.conns[userID][c] = true
}

// Deregister removes a connection. Safe to call for an unknown connection.
func (h *Hub) Deregister(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Publish sends an event to every live connection of a user. Connections
// that fail to write are dropped; an offline user is not an error.
func (h *Hub) Publish(userID string, event Event, data any) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(Envelope{Event: event, Data: data}); err != nil {
			log.Printf("realtime: dropping connection for user %s: %v", userID, err)
			c.Close()
			h.Deregister(userID, c)
		}
	}
}

// Connected reports whether the user has at least one live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}
