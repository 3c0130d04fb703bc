package client

import (
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"

	"github.com/webchat/relay/src/types"
)

// Status is the connection state surfaced to the UI.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DialFunc establishes one transport session. Injectable so the state
// machine is testable without a network.
type DialFunc func(url string) (types.Conn, error)

// Config holds reconnection policy and endpoint settings.
type Config struct {
	URL         string        // WebSocket endpoint, session token included
	MaxAttempts int           // consecutive failed attempts before giving up
	RetryDelay  time.Duration // fixed delay between attempts
	Dial        DialFunc      // defaults to the fasthttp/websocket dialer
}

// DefaultConfig returns the reconnection policy the web client shipped
// with: five attempts, one second apart.
func DefaultConfig(url string) Config {
	return Config{
		URL:         url,
		MaxAttempts: 5,
		RetryDelay:  time.Second,
	}
}

// Controller maintains one logical relay session across transport drops.
// It owns nothing but the connection: the desired-room set mirrors what the
// UI wants to be subscribed to and survives every drop, and after each
// successful handshake all desired joins are replayed. Messages missed
// while down are not buffered anywhere; the application's fetch-on-select
// path recovers them.
type Controller struct {
	cfg    Config
	logger zerolog.Logger

	mu      sync.Mutex
	wmu     sync.Mutex // serializes writes to the current connection
	status  Status
	desired map[string]bool
	conn    types.Conn
	connID  string
	running bool

	onMessage func(types.MessageEvent)
	onStatus  func(Status)

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a reconnection controller. Callbacks may be nil.
func New(cfg Config, logger zerolog.Logger) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = wsDial
	}
	return &Controller{
		cfg:     cfg,
		logger:  logger.With().Str("component", "reconnect").Logger(),
		desired: make(map[string]bool),
	}
}

// OnMessage sets the callback invoked for each delivered message event.
func (c *Controller) OnMessage(cb func(types.MessageEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = cb
}

// OnStatus sets the callback invoked on every status transition.
func (c *Controller) OnStatus(cb func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = cb
}

// Status returns the current connection status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ConnectionID returns the server-assigned id of the current session, empty
// while disconnected.
func (c *Controller) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// Connect starts the session loop. Calling Connect while running is a
// no-op.
func (c *Controller) Connect() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run()
}

// Close tears the session down and stops retrying.
func (c *Controller) Close() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.setStatus(StatusDisconnected)
}

// JoinRoom adds a room to the desired set and, when connected, sends the
// join intent immediately. The desired set survives drops; every room in it
// is re-joined after each reconnect.
func (c *Controller) JoinRoom(room string) error {
	c.mu.Lock()
	c.desired[room] = true
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil // replayed on next connect
	}
	return c.write(conn, types.Frame{Event: types.EventJoinRoom, Room: room})
}

// LeaveRoom removes a room from the desired set and, when connected, sends
// the leave intent.
func (c *Controller) LeaveRoom(room string) error {
	c.mu.Lock()
	delete(c.desired, room)
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return c.write(conn, types.Frame{Event: types.EventLeaveRoom, Room: room})
}

// DesiredRooms returns the rooms the controller re-joins after reconnect.
func (c *Controller) DesiredRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]string, 0, len(c.desired))
	for r := range c.desired {
		rooms = append(rooms, r)
	}
	return rooms
}

// run is the session loop: dial, replay joins, read until drop, retry with
// a fixed delay up to the attempt bound, then park disconnected.
func (c *Controller) run() {
	defer c.wg.Done()

	attempts := 0
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.setStatus(StatusConnecting)
		conn, err := c.cfg.Dial(c.cfg.URL)
		if err != nil {
			attempts++
			c.logger.Warn().Err(err).Int("attempt", attempts).Msg("connect failed")
			if attempts >= c.cfg.MaxAttempts {
				// Out of attempts; stay down until the caller reconnects
				// explicitly.
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()
				c.setStatus(StatusDisconnected)
				return
			}
			select {
			case <-time.After(c.cfg.RetryDelay):
				continue
			case <-c.done:
				return
			}
		}
		attempts = 0

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.setStatus(StatusConnected)

		c.replayJoins(conn)
		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.connID = ""
		stopped := !c.running
		c.mu.Unlock()
		conn.Close()
		c.setStatus(StatusDisconnected)
		if stopped {
			return
		}
	}
}

// replayJoins re-issues a join intent for every desired room. Join is
// idempotent server-side, so replaying an already-joined room is harmless.
func (c *Controller) replayJoins(conn types.Conn) {
	c.mu.Lock()
	rooms := make([]string, 0, len(c.desired))
	for r := range c.desired {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()

	for _, room := range rooms {
		if err := c.write(conn, types.Frame{Event: types.EventJoinRoom, Room: room}); err != nil {
			c.logger.Warn().Err(err).Str("room", room).Msg("join replay failed")
			return
		}
	}
}

// readLoop consumes server frames until the transport drops.
func (c *Controller) readLoop(conn types.Conn) {
	for {
		var frame types.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Event {
		case types.EventConnected:
			c.mu.Lock()
			c.connID = frame.ConnectionID
			c.mu.Unlock()
		case types.EventMessage:
			if frame.Message == nil {
				continue
			}
			c.mu.Lock()
			cb := c.onMessage
			c.mu.Unlock()
			if cb != nil {
				cb(*frame.Message)
			}
		case types.EventError:
			c.logger.Warn().Str("reason", frame.Reason).Msg("server error frame")
		}
	}
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	cb := c.onStatus
	c.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

func (c *Controller) write(conn types.Conn, f types.Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteJSON(f)
}

// wsDial is the production dialer.
func wsDial(url string) (types.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
