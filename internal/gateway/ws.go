package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must speak.
const Subprotocol = "quizwire"

// Custom close codes for failures that happen after the upgrade, where a
// plain HTTP status is no longer possible.
const (
	BadSubprotocolError = 3000 // client connected with an unsupported subprotocol
)

// WSHandler upgrades the connection and runs the read/write pump pair for
// its lifetime. All protocol handling is delegated to the Gateway.
func WSHandler(logger *logrus.Logger, g *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // tighten in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the quizwire subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := NewConn(cancel)

		logger.WithFields(logrus.Fields{
			"conn":   conn.ID,
			"remote": r.RemoteAddr,
		}).Info("websocket connected")

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, conn, g, logger)

		// readPump returned: the socket is gone one way or another.
		g.HandleDisconnect(conn)
		cancel()
		logger.WithField("conn", conn.ID).Info("websocket disconnected")
	}
}

// readPump reads frames until the connection closes and feeds each one to
// the gateway dispatcher.
func readPump(ctx context.Context, c *websocket.Conn, conn *Conn, g *Gateway, logger *logrus.Logger) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return
			}
			if strings.Contains(err.Error(), "context canceled") {
				return
			}
			logger.WithField("conn", conn.ID).Warnf("read error: %v (close status %d)", err, closeStatus)
			return
		}
		if typ != websocket.MessageText {
			logger.WithField("conn", conn.ID).Warnf("ignoring non-text message type %d", typ)
			continue
		}

		g.HandleMessage(ctx, conn, msg)
	}
}

// writePump drains the connection's OutChan onto the socket and sends
// periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.WithField("conn", conn.ID).Warnf("failed to marshal outgoing msg: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).Warnf("write error: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.WithField("conn", conn.ID).Warnf("ping failed, assuming disconnect: %v", err)
				return
			}
		}
	}
}
