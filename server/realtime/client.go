package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"barbuddy/pkg/logger"
	"barbuddy/pkg/metrics"
)

// MessageHandler processes a private_message frame read off a connection.
type MessageHandler func(ctx context.Context, client *Client, env Envelope)

// Options holds the deadlines, intervals and buffer size for a
// websocket connection.
type Options struct {
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

func DefaultOptions() Options {
	return Options{
		WriteWait:    10 * time.Second,
		PongWait:     60 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   256,
	}
}

// Client is a single websocket connection bound to an authenticated user.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Email  string

	conn    *websocket.Conn
	send    chan any
	hub     *Hub
	handler MessageHandler
	opts    Options

	mu     sync.Mutex
	closed bool
}

func NewClient(userID uuid.UUID, email string, conn *websocket.Conn, hub *Hub, handler MessageHandler, opts Options) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultOptions().SendBuffer
	}
	return &Client{
		ID:      uuid.New(),
		UserID:  userID,
		Email:   email,
		conn:    conn,
		send:    make(chan any, opts.SendBuffer),
		hub:     hub,
		handler: handler,
		opts:    opts,
	}
}

// Enqueue queues a payload for delivery on this connection. It reports
// false when the connection is gone or its buffer is full.
func (c *Client) Enqueue(payload any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		metrics.WebsocketDropped.Inc()
		logger.WithFields(map[string]interface{}{
			"user_id":   c.UserID.String(),
			"client_id": c.ID.String(),
		}).Warn("Client send buffer full, dropping frame")
		return false
	}
}

func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// CloseConn closes the underlying connection if one is attached.
func (c *Client) CloseConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// ReadPump reads frames until the connection drops, dispatching
// private_message frames to the handler. It blocks the caller.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.WithError(err).Error("Websocket read error")
			}
			return
		}

		switch env.Type {
		case EventPing:
			c.Enqueue(PongEnvelope{Type: EventPong, Timestamp: time.Now().Unix()})

		case EventPrivateMessage:
			c.handler(ctx, c, env)

		default:
			c.Enqueue(NewError("unsupported message type: " + string(env.Type)))
		}
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(payload); err != nil {
				logger.WithError(err).Error("Websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
