package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// client is one websocket connection. Its identity fields are only touched by
// the connection's read loop and by the hub under its lock.
type client struct {
	conn *websocket.Conn
	send chan []byte

	// handle identifies this connection to the game service
	handle string

	sessionCode   string
	participantID string
	adminToken    string
}

func newClient(conn *websocket.Conn, handle string) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		handle: handle,
	}
}

// enqueue queues a frame without blocking and reports whether it fit
func (c *client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) joined() bool {
	return c.participantID != ""
}

// writePump drains the send queue onto the connection and keeps it alive
// with pings. It closes the connection once the queue is closed.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
