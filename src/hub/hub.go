package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/webchat/relay/src/types"
)

// MessageBridge forwards persisted message events to other relay instances.
// Defined here to avoid circular imports with the bridge package.
type MessageBridge interface {
	Publish(ev types.MessageEvent) error
	Available() bool
}

// FrameHandler handles an inbound wire frame from a connection.
type FrameHandler func(connID string, frame types.Frame) error

// Hub owns all live connections and the room membership map. It is the
// single dispatch authority for a relay process: registration, inbound
// frame handling, and fan-out all pass through one event loop, so no two
// fan-outs for the same room can interleave.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[string]bool // roomID -> set of connection ids

	register   chan *Client
	unregister chan *Client
	incoming   chan inboundFrame
	dispatch   chan dispatchReq
	localCast  chan types.MessageEvent // events from the bridge, no re-publish

	handlers  map[string]FrameHandler
	onConnect []func(string)
	onDisconn []func(string)

	bridge MessageBridge
	mu     sync.RWMutex
	logger zerolog.Logger
	done   chan struct{}
}

type inboundFrame struct {
	connID string
	frame  types.Frame
}

type dispatchReq struct {
	event types.MessageEvent
	reply chan types.DeliveryReport // nil for fire-and-forget
}

// New creates a new Hub instance.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inboundFrame, 256),
		dispatch:   make(chan dispatchReq, 256),
		localCast:  make(chan types.MessageEvent, 256),
		handlers:   make(map[string]FrameHandler),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// SetBridge attaches a cross-instance message bridge to the hub.
// When set, dispatched events are also forwarded to other instances.
func (h *Hub) SetBridge(b MessageBridge) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = b
}

// RegisterHandler registers a handler for an inbound frame event name.
func (h *Hub) RegisterHandler(event string, handler FrameHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[event] = handler
}

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.incoming:
			h.handleFrame(in)
		case req := <-h.dispatch:
			h.forwardToBridge(req.event)
			report := h.deliver(req.event)
			if req.reply != nil {
				req.reply <- report
			}
		case ev := <-h.localCast:
			h.deliver(ev)
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub event loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register queues a connection for registration.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister queues a connection for removal. Unregistering a connection
// that is already gone is a no-op.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if _, exists := h.clients[c.ID]; exists {
		h.mu.Unlock()
		// Connection ids are transport-assigned uuids; a collision means a
		// caller reused an id. Reject the newcomer, keep the original.
		h.logger.Error().Str("conn_id", c.ID).Msg("duplicate connection id, rejecting")
		c.Close()
		return
	}
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.logger.Info().Str("conn_id", c.ID).Str("user_id", c.UserID).Msg("connection registered")

	for _, cb := range h.onConnect {
		cb(c.ID)
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)

	// Drop the connection from every room; rooms emptied by the removal
	// are garbage-collected immediately.
	for room, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	c.Close()
	h.logger.Info().Str("conn_id", c.ID).Str("user_id", c.UserID).Msg("connection unregistered")

	for _, cb := range h.onDisconn {
		cb(c.ID)
	}
}

func (h *Hub) handleFrame(in inboundFrame) {
	h.mu.RLock()
	handler, ok := h.handlers[in.frame.Event]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug().Str("event", in.frame.Event).Msg("no handler")
		return
	}
	if err := handler(in.connID, in.frame); err != nil {
		h.logger.Error().Err(err).
			Str("event", in.frame.Event).
			Str("conn_id", in.connID).
			Msg("handler error")
	}
}
