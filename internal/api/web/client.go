package web

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oshokin/tempwatch/internal/logger"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize is the largest message accepted from the peer.
	maxMessageSize = 512
	// sendBufferSize is the number of frames queued per client.
	sendBufferSize = 16
)

// Client sits between one WebSocket connection and the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// newClient wraps conn for hub.
func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		remote: conn.RemoteAddr().String(),
	}
}

// Serve registers the client and pumps frames until either side goes away.
func (c *Client) Serve(ctx context.Context) {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		_ = c.conn.Close()

		return
	}

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards client messages and detects disconnects.
// Observers are passive; the only inbound traffic is control frames.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}

		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				logger.WarnKV(ctx, "WebSocket read failed", "remote", c.remote, "error", err)
			}

			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.WarnKV(ctx, "WebSocket write failed", "remote", c.remote, "error", err)

				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
