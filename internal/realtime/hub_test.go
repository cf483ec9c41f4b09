package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []Envelope
	failed bool
	closed bool
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, v.(Envelope))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestPublishReachesAllDevices(t *testing.T) {
	h := NewHub()
	a, b := &fakeConn{}, &fakeConn{}
	h.Register("u1", a)
	h.Register("u1", b)

	h.Publish("u1", EventNewMessage, map[string]string{"text": "hi"})

	assert.Len(t, a.sent, 1)
	assert.Len(t, b.sent, 1)
	assert.Equal(t, EventNewMessage, a.sent[0].Event)
}

func TestPublishToOfflineUserIsNoop(t *testing.T) {
	h := NewHub()
	h.Publish("ghost", EventNewNotification, nil) // must not panic
	assert.False(t, h.Connected("ghost"))
}

func TestFailedConnectionIsDropped(t *testing.T) {
	h := NewHub()
	bad := &fakeConn{failed: true}
	good := &fakeConn{}
	h.Register("u1", bad)
	h.Register("u1", good)

	h.Publish("u1", EventMessagesRead, nil)

	assert.True(t, bad.closed)
	assert.Len(t, good.sent, 1)
	assert.True(t, h.Connected("u1"))

	h.Deregister("u1", good)
	assert.False(t, h.Connected("u1"))
}
