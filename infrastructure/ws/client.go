package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Client owns one websocket connection: a read pump that turns frames
// into envelopes for the router, and a write pump draining the buffered
// send queue with keepalive pings.
type Client struct {
	conn   *websocket.Conn
	connID string
	send   chan []byte
	log    *slog.Logger
}

func NewClient(conn *websocket.Conn, connID string, sendBuffer int, log *slog.Logger) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		conn:   conn,
		connID: connID,
		send:   make(chan []byte, sendBuffer),
		log:    log,
	}
}

func (c *Client) ConnID() string { return c.connID }

// enqueue queues an outbound frame without blocking. Reports false when
// the queue is full and the frame was dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump blocks reading frames and feeding envelopes to route until
// the connection dies. The caller runs cleanup after it returns.
func (c *Client) ReadPump(route func(*Client, Envelope)) {
	defer func() {
		if err := c.conn.Close(); err != nil {
			c.log.Debug("Close after read pump", "conn_id", c.connID, "error", err)
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "conn_id", c.connID, "error", err)
			} else {
				c.log.Debug("Client disconnected", "conn_id", c.connID, "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.log.Debug("Unreadable frame", "conn_id", c.connID, "error", err)
			continue
		}
		route(c, env)
	}
}

// WritePump drains the send queue and keeps the connection alive with
// periodic pings. Exits when the queue closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.log.Debug("Close after write pump", "conn_id", c.connID, "error", err)
		}
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failed", "conn_id", c.connID, "error", err)
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
