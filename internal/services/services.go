package services

import (
	"sync"

	"github.com/hasinarivo/vetcare-api/internal/realtime"
)

// Notifier is the push side of the realtime channel. Delivery is
// best-effort; the persisted record is the durable source of truth.
// Implemented by *realtime.Hub.
type Notifier interface {
	Publish(userID string, event realtime.Event, data any)
}

// noopNotifier lets services run without a realtime channel attached.
type noopNotifier struct{}

func (noopNotifier) Publish(string, realtime.Event, any) {}

// keyedMutex hands out one mutex per key. Used to serialize bookings per
// practitioner so the conflict check and the insert happen as a unit.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
