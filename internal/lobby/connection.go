// internal/lobby/connection.go
package lobby

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DefaultOutBuffer is the OutChan capacity used by transports.
const DefaultOutBuffer = 32

// Connection is a single player's live realtime subscription to a lobby.
type Connection struct {
	PlayerID string
	Cancel   context.CancelFunc
	OutChan  chan Event

	mu     sync.Mutex
	closed bool
}

// NewConnection creates a connection with a buffered OutChan. cancel may be nil.
func NewConnection(playerID string, cancel context.CancelFunc, buffer int) *Connection {
	if buffer <= 0 {
		buffer = DefaultOutBuffer
	}
	return &Connection{
		PlayerID: playerID,
		Cancel:   cancel,
		OutChan:  make(chan Event, buffer),
	}
}

// Write pushes an event onto OutChan without blocking. A full or closed channel
// drops the event; the return value reports whether it was queued.
func (c *Connection) Write(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.OutChan <- ev:
		return true
	default:
		log.WithFields(log.Fields{"player": c.PlayerID, "type": ev.Type}).Warn("outbound channel full, dropped event")
		return false
	}
}

// WriteError sends an error event to this connection only.
func (c *Connection) WriteError(msg string) {
	c.Write(Event{Type: EventError, Payload: ErrorPayload{Message: msg}})
}

// Close closes OutChan and cancels the reader. Safe to call more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.OutChan)
	if c.Cancel != nil {
		c.Cancel()
	}
}
