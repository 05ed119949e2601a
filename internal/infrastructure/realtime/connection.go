package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeDeadline     = 10 * time.Second
	heartbeatInterval = 30 * time.Second
)

// ErrConnectionClosed is returned by Send once the connection has been torn
// down.
var ErrConnectionClosed = errors.New("connection closed")

// Socket is the write-side surface of *websocket.Conn. The registry and
// fan-out paths only ever write, so tests substitute an in-memory socket.
type Socket interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Connection serializes all outbound traffic for one authenticated socket
// through a single writer goroutine. Sends from any goroutine go into a
// bounded outbox; the writer drains it and emits pings while idle. A user may
// hold several Connections at once (one per tab or device).
type Connection struct {
	ID     string
	UserID string

	ws     Socket
	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewConnection(userID string, ws Socket) *Connection {
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		outbox: make(chan []byte, 128),
		done:   make(chan struct{}),
	}
}

// Start launches the writer goroutine. Call it exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for the writer goroutine. A full outbox means the
// client is not keeping up, so the connection is torn down rather than
// letting the backlog grow without bound. Payloads accepted concurrently
// with Close may be discarded unread; the outbox is never closed, so Send
// stays safe to call during teardown.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.outbox <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close signals the writer to stop, sends a close control frame and releases
// the underlying socket. Subsequent calls are no-ops.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeDeadline))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.outbox:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
