package controller

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c *controller) registerConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.writeLocks[conn] = &sync.Mutex{}
	c.connMu.Unlock()
}

func (c *controller) unregisterConn(conn *websocket.Conn) {
	c.connMu.Lock()
	delete(c.writeLocks, conn)
	c.connMu.Unlock()

	conn.Close()
}

// writeJSON serializes writes per connection. A failed write closes only
// that connection.
func (c *controller) writeJSON(ctx context.Context, conn *websocket.Conn, out *Output) error {
	c.connMu.RLock()
	lock := c.writeLocks[conn]
	c.connMu.RUnlock()

	if lock == nil {
		// connection already unregistered
		return nil
	}

	lock.Lock()
	err := conn.WriteJSON(out)
	lock.Unlock()

	if err != nil {
		c.logger.WarnContext(ctx, "failed to write message", "error", err)
		conn.Close()
	}

	return err
}

func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) {
	for _, conn := range conns {
		c.writeJSON(ctx, conn, out)
	}
}

func (c *controller) broadcastExcept(ctx context.Context, conns []*websocket.Conn, sender *websocket.Conn, out *Output) {
	for _, conn := range conns {
		if conn == sender {
			continue
		}

		c.writeJSON(ctx, conn, out)
	}
}
