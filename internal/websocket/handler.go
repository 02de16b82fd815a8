package websocket

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/dstrobel/einkauf/internal/bus"
)

// Handle upgrades the request to a websocket and forwards every change
// notification from the bus to the browser until either side disconnects.
func Handle(b *bus.Bus, logger *slog.Logger) http.HandlerFunc {
	log := logger.With("component", "websocket")

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn("websocket accept failed", "error", err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		c := newClient(conn, log)

		unsubscribe := b.Subscribe(c.notify)
		defer unsubscribe()

		log.Debug("client connected", "remote", r.RemoteAddr)

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.writePump(ctx)
		}()

		c.readPump(ctx)
		cancel()
		<-done

		conn.Close(websocket.StatusNormalClosure, "")
		log.Debug("client disconnected", "remote", r.RemoteAddr)
	}
}
