package gateway

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Conn is one client's presence on the gateway. The websocket write pump
// drains OutChan; everything else only ever sends to it.
type Conn struct {
	ID      uuid.UUID
	Cancel  context.CancelFunc
	OutChan chan map[string]interface{}
}

// NewConn allocates a connection with a fresh id and a buffered out channel.
func NewConn(cancel context.CancelFunc) *Conn {
	return &Conn{
		ID:      uuid.New(),
		Cancel:  cancel,
		OutChan: make(chan map[string]interface{}, 16),
	}
}

// Write pushes a message onto the connection's OutChan non-blockingly.
// Logs if the channel is full or closed and the message is dropped.
func (c *Conn) Write(msg map[string]interface{}) {
	select {
	case c.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Printf("gateway: OutChan for conn %s closed or full, dropped message type %q", c.ID, msgType)
	}
}

// WriteError is a convenience to unicast an error event.
func (c *Conn) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    EventError,
		"message": msg,
	})
}
