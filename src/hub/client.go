package hub

import (
	"sync"
	"time"

	"github.com/webchat/relay/src/types"
)

// Client wraps one live WebSocket connection. The user id is bound once by
// the session gate at handshake time and never changes; frames received
// later are always attributed to it.
type Client struct {
	ID     string
	UserID string

	conn        types.Conn
	hub         *Hub
	Send        chan types.Frame
	connectedAt time.Time
	rooms       map[string]bool
	mu          sync.RWMutex
	done        chan struct{}
	closed      bool
}

// NewClient creates a new connection wrapper bound to an authenticated user.
func NewClient(id, userID string, conn types.Conn, h *Hub) *Client {
	return &Client{
		ID:          id,
		UserID:      userID,
		conn:        conn,
		hub:         h,
		Send:        make(chan types.Frame, 256),
		connectedAt: time.Now(),
		rooms:       make(map[string]bool),
		done:        make(chan struct{}),
	}
}

// Info returns metadata about this connection.
func (c *Client) Info() types.ConnectionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	return types.ConnectionInfo{
		ID:          c.ID,
		UserID:      c.UserID,
		ConnectedAt: c.connectedAt,
		Rooms:       rooms,
	}
}

func (c *Client) addRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

func (c *Client) removeRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// TrySend queues a frame without blocking. It is safe on a closed client:
// a full buffer or a closed connection just reports false, and the caller
// treats the connection as dead.
func (c *Client) TrySend(f types.Frame) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- f:
		return true
	default:
		return false
	}
}

// ReadPump reads frames from the WebSocket and routes them to the hub.
// Exits on the first read error, which covers transport close, timeout,
// and client teardown alike.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		var frame types.Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}
		select {
		case c.hub.incoming <- inboundFrame{connID: c.ID, frame: frame}:
		case <-c.hub.done:
			return
		}
	}
}

// WritePump writes queued frames to the WebSocket.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case frame, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close signals the client to stop its pumps.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
		close(c.Send)
	}
}
