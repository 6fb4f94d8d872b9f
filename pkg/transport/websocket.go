package transport

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn wraps a WebSocket connection as a duplex control connection: the
// inbound messages feed an ImageQueue polled through the Image interface,
// and Offer publishes outbound messages. One WSConn serves exactly one
// control connection.
type WSConn struct {
	conn   *websocket.Conn
	queue  *ImageQueue
	config ConnConfig
	logger *slog.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
}

// ConnConfig bounds a control connection.
type ConnConfig struct {
	// ReadTimeout is the idle limit between inbound messages. Keep-alives
	// from healthy clients arrive well within it.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single outbound write.
	WriteTimeout time.Duration

	// ReadLimit caps the size of one inbound message.
	ReadLimit int64

	// QueueCapacity is the inbound fragment backlog.
	QueueCapacity int
}

// Connection defaults.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultReadLimit    = 1 << 20
)

func (c ConnConfig) withDefaults() ConnConfig {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = DefaultReadLimit
	}
	return c
}

func newWSConn(conn *websocket.Conn, correlationID int64, config ConnConfig, logger *slog.Logger) *WSConn {
	config = config.withDefaults()
	conn.SetReadLimit(config.ReadLimit)
	return &WSConn{
		conn:   conn,
		queue:  NewImageQueue(correlationID, conn.RemoteAddr().String(), config.QueueCapacity),
		config: config,
		logger: logger.With("correlation_id", correlationID, "remote", conn.RemoteAddr().String()),
	}
}

// readPump moves inbound binary messages into the image queue. It runs in
// its own goroutine and marks the image closed when the connection ends.
func (c *WSConn) readPump() {
	defer c.queue.Close()

	for {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		if err := c.queue.Offer(msg); err != nil {
			c.logger.Warn("fragment dropped", "error", err)
		}
	}
}

// Poll drains inbound fragments. See Image.
func (c *WSConn) Poll(handler FragmentHandler, fragmentLimit int) (int, error) {
	return c.queue.Poll(handler, fragmentLimit)
}

// IsClosed reports whether the connection has ended.
func (c *WSConn) IsClosed() bool {
	return c.queue.IsClosed()
}

// SourceIdentity is the remote address.
func (c *WSConn) SourceIdentity() string {
	return c.queue.SourceIdentity()
}

// CorrelationID is the identity assigned at accept.
func (c *WSConn) CorrelationID() int64 {
	return c.queue.CorrelationID()
}

// Offer publishes one outbound message.
func (c *WSConn) Offer(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.logger.Error("write error", "error", err)
		return err
	}
	return nil
}

// Close tears the connection down. Safe to call more than once.
func (c *WSConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.queue.Close()
	return err
}
