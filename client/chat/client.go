package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"barbuddy/server/realtime"
)

// State is the lifecycle phase of the client connection.
type State int32

const (
	StateInitializing State = iota
	StateAuthenticating
	StateLoadingHistory
	StateConnecting
	StateReady
	StateErrored
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticating:
		return "authenticating"
	case StateLoadingHistory:
		return "loading_history"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultReconnectAttempts = 5
	defaultReconnectDelay    = time.Second
	defaultAckTimeout        = 10 * time.Second
)

// Config configures a chat client session.
type Config struct {
	// BaseURL is the HTTP origin of the server, e.g. http://localhost:3000.
	BaseURL string

	// WSURL is the websocket endpoint, e.g. ws://localhost:3000/ws.
	WSURL string

	Email    string
	Password string

	// FriendID selects whose conversation to load on startup.
	FriendID uuid.UUID

	// ReconnectAttempts bounds reconnection after a dropped connection.
	//
	// Optional. Default: 5
	ReconnectAttempts int

	// ReconnectDelay is the pause between reconnection attempts.
	//
	// Optional. Default: 1 second
	ReconnectDelay time.Duration

	// OnMessage is called for every message pushed by the server.
	//
	// Optional. Default: nil
	OnMessage func(msg realtime.ChatMessage)

	// OnStateChange observes lifecycle transitions.
	//
	// Optional. Default: nil
	OnStateChange func(state State)
}

func (cfg *Config) withDefaults() {
	if cfg.ReconnectAttempts <= 0 {
		cfg.ReconnectAttempts = defaultReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
}

// Client is a chat session: it logs in, loads the conversation with one
// friend, then keeps a live websocket open for sending and receiving.
type Client struct {
	cfg  Config
	http *fasthttp.Client

	token  string
	userID uuid.UUID

	state atomic.Int32

	connMu sync.Mutex
	conn   *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]chan realtime.AckEnvelope

	historyMu  sync.Mutex
	history    []realtime.ChatMessage
	historyErr error

	closed chan struct{}
	once   sync.Once
}

func New(cfg Config) *Client {
	cfg.withDefaults()

	c := &Client{
		cfg:     cfg,
		http:    &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second},
		pending: make(map[string]chan realtime.AckEnvelope),
		closed:  make(chan struct{}),
	}
	c.state.Store(int32(StateInitializing))
	return c
}

// State returns the current lifecycle phase.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// UserID returns the authenticated user's ID. Valid after Start.
func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// HistoryErr reports why the startup history fetch failed, or nil.
// The websocket session runs regardless.
func (c *Client) HistoryErr() error {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	return c.historyErr
}

// History returns a copy of the messages seen so far, oldest first.
func (c *Client) History() []realtime.ChatMessage {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	out := make([]realtime.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

// Start walks the session up to ready: authenticate, load history,
// connect the websocket. It returns once the connection is live; the
// read loop keeps running in the background.
//
// History is best-effort: a failed fetch is recorded (see HistoryErr)
// and the realtime connection is attempted anyway.
func (c *Client) Start(ctx context.Context) error {
	c.setState(StateAuthenticating)
	if err := c.authenticate(); err != nil {
		c.setState(StateErrored)
		return err
	}

	c.setState(StateLoadingHistory)
	if err := c.loadHistory(); err != nil {
		c.historyMu.Lock()
		c.historyErr = err
		c.historyMu.Unlock()
	}

	c.setState(StateConnecting)
	if err := c.connect(); err != nil {
		c.setState(StateErrored)
		return err
	}

	c.setState(StateReady)
	go c.readLoop()
	return nil
}

func (c *Client) authenticate() error {
	body, err := json.Marshal(map[string]string{
		"email":    c.cfg.Email,
		"password": c.cfg.Password,
	})
	if err != nil {
		return err
	}

	status, respBody, err := c.post(c.cfg.BaseURL+"/api/users/login", body)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	if status != fasthttp.StatusOK {
		return fmt.Errorf("login failed with status %d", status)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	userID, err := uuid.Parse(resp.User.ID)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}

	c.token = resp.Token
	c.userID = userID
	return nil
}

func (c *Client) loadHistory() error {
	url := fmt.Sprintf("%s/api/chat/%s", c.cfg.BaseURL, c.cfg.FriendID)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)

	if err := c.http.Do(req, resp); err != nil {
		return fmt.Errorf("history request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("history request failed with status %d", resp.StatusCode())
	}

	var history []realtime.ChatMessage
	if err := json.Unmarshal(resp.Body(), &history); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}

	c.historyMu.Lock()
	c.history = history
	c.historyMu.Unlock()
	return nil
}

func (c *Client) connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.Dial(c.cfg.WSURL+"?token="+c.token, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// Send delivers a message and waits for the server's ack. The returned
// message is the persisted copy from the ack. A blank body is dropped
// without a round trip.
func (c *Client) Send(ctx context.Context, receiverID uuid.UUID, text string) (realtime.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return realtime.ChatMessage{}, nil
	}
	if c.State() != StateReady {
		return realtime.ChatMessage{}, fmt.Errorf("client not ready (state %s)", c.State())
	}

	ackID := uuid.NewString()
	ackCh := make(chan realtime.AckEnvelope, 1)

	c.pendingMu.Lock()
	c.pending[ackID] = ackCh
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, ackID)
		c.pendingMu.Unlock()
	}()

	env := realtime.Envelope{
		Type:       realtime.EventPrivateMessage,
		AckID:      ackID,
		ReceiverID: receiverID.String(),
		Message:    text,
	}
	if err := c.writeJSON(env); err != nil {
		return realtime.ChatMessage{}, fmt.Errorf("send message: %w", err)
	}

	timeout := defaultAckTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	select {
	case ack := <-ackCh:
		if !ack.Success {
			return realtime.ChatMessage{}, fmt.Errorf("message rejected: %s", ack.Error)
		}
		if ack.Message == nil {
			return realtime.ChatMessage{}, fmt.Errorf("ack missing message")
		}
		return *ack.Message, nil
	case <-time.After(timeout):
		return realtime.ChatMessage{}, fmt.Errorf("timed out waiting for ack")
	case <-ctx.Done():
		return realtime.ChatMessage{}, ctx.Err()
	case <-c.closed:
		return realtime.ChatMessage{}, fmt.Errorf("client closed")
	}
}

func (c *Client) writeJSON(v any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("no connection")
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) readLoop() {
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				return
			default:
			}
			if !c.reconnect() {
				c.setState(StateErrored)
				return
			}
			continue
		}

		c.dispatch(data)
	}
}

// reconnect retries the websocket dial a bounded number of times. It
// reports whether the connection came back.
func (c *Client) reconnect() bool {
	c.setState(StateConnecting)

	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		select {
		case <-c.closed:
			return false
		case <-time.After(c.cfg.ReconnectDelay):
		}

		if err := c.connect(); err == nil {
			c.setState(StateReady)
			return true
		}
	}
	return false
}

func (c *Client) dispatch(data []byte) {
	var probe struct {
		Type realtime.EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}

	switch probe.Type {
	case realtime.EventAck:
		var ack realtime.AckEnvelope
		if err := json.Unmarshal(data, &ack); err != nil {
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[ack.AckID]
		c.pendingMu.Unlock()
		if ok {
			ch <- ack
		}

	case realtime.EventNewMessage:
		var push realtime.NewMessageEnvelope
		if err := json.Unmarshal(data, &push); err != nil {
			return
		}
		c.historyMu.Lock()
		c.history = append(c.history, push.Message)
		c.historyMu.Unlock()
		if c.cfg.OnMessage != nil {
			c.cfg.OnMessage(push.Message)
		}
	}
}

// Close tears the session down. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		c.setState(StateClosed)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			err = c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
	})
	return err
}

func (c *Client) post(url string, body []byte) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.http.Do(req, resp); err != nil {
		return 0, nil, err
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}
