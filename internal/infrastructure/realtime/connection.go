package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	defaultPingPeriod = 30 * time.Second
	defaultSendBuffer = 128
)

// Close codes used by the gateway.
const (
	CloseUnauthorized = websocket.ClosePolicyViolation
	CloseGoingAway    = websocket.CloseGoingAway
	CloseNormal       = websocket.CloseNormalClosure
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferExceeded   = errors.New("connection buffer exceeded")
)

// Conn is the registry's view of a live socket.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Close(code int, reason string)
}

// ConnectionOptions tunes the outbound side of a Connection.
type ConnectionOptions struct {
	SendBuffer int
	PingPeriod time.Duration
}

// Connection wraps a websocket and coordinates outbound writes via a buffered channel.
// Only the write loop writes data frames; Send is safe for concurrent use.
type Connection struct {
	id     string
	userID string

	ws         *websocket.Conn
	send       chan []byte
	pingPeriod time.Duration
	started    atomic.Bool
	once       sync.Once
	flush      bool // written before close is closed
	close      chan struct{}
	done       chan struct{}
}

var _ Conn = (*Connection)(nil)

// NewConnection constructs a Connection for the given user.
func NewConnection(userID string, ws *websocket.Conn, opts ConnectionOptions) *Connection {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	return &Connection{
		id:         uuid.NewString(),
		userID:     userID,
		ws:         ws,
		send:       make(chan []byte, opts.SendBuffer),
		pingPeriod: opts.PingPeriod,
		close:      make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (c *Connection) ID() string     { return c.id }
func (c *Connection) UserID() string { return c.userID }

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	c.started.Store(true)
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is full,
// the connection is closed without flushing to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}
	select {
	case <-c.close:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.shutdown(websocket.ClosePolicyViolation, "send buffer full", false)
		return ErrBufferExceeded
	}
}

// Close stops accepting payloads, lets the write loop flush what is already queued,
// then sends a close frame and tears down the socket. The flush is bounded by writeWait.
// The send channel is never closed, so concurrent senders observe ErrConnectionClosed
// instead of panicking.
func (c *Connection) Close(code int, reason string) {
	c.shutdown(code, reason, true)
}

func (c *Connection) shutdown(code int, reason string, flush bool) {
	c.once.Do(func() {
		c.flush = flush
		close(c.close)
		if flush && c.started.Load() {
			select {
			case <-c.done:
			case <-time.After(writeWait):
			}
		}
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

// Done is closed when the write loop has exited.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	var failure string
	defer func() {
		ticker.Stop()
		close(c.done)
		if failure != "" {
			c.Close(websocket.CloseInternalServerErr, failure)
		}
	}()

	for {
		select {
		case <-c.close:
			if c.flush {
				c.drainQueue()
			}
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				failure = "write failed"
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				failure = "ping failed"
				return
			}
		}
	}
}

// drainQueue writes whatever is still buffered without waiting for more.
func (c *Connection) drainQueue() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
