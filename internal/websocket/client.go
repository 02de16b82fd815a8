package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// changedFrame is the single frame type pushed to browsers. It carries no
// payload: clients react by refetching whatever view they have mounted.
var changedFrame = []byte(`{"type":"items_changed"}`)

// client is one connected browser. The send channel is never closed; the
// write pump exits when ctx is cancelled, so a concurrent notify can at
// worst enqueue into a buffer nobody drains.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// notify enqueues a change frame. Non-blocking: a slow consumer with a full
// buffer already has a pending frame, and one frame is enough to trigger a
// refetch.
func (c *client) notify() {
	select {
	case c.send <- changedFrame:
	default:
	}
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(wctx)
			cancel()
			if err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}

// readPump consumes and discards inbound frames. Its only job is to notice
// the peer going away so the handler can tear the connection down.
func (c *client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}
