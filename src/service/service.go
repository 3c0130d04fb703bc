package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/webchat/relay/src/auth"
	"github.com/webchat/relay/src/hub"
	"github.com/webchat/relay/src/types"
)

var (
	// ErrInvalidRoom is returned for a room id outside the known
	// conversation id spaces.
	ErrInvalidRoom = errors.New("invalid room id")
	// ErrUnauthorizedRoom is returned when the authorizer denies a join.
	ErrUnauthorizedRoom = errors.New("not a participant of this room")
	// ErrInvalidEvent is returned for a message event missing required
	// fields.
	ErrInvalidEvent = errors.New("invalid message event")
)

// Service is the high-level relay API. The transport layer uses it for
// join and leave intents; the external CRUD layer hands it persisted
// message events for fan-out.
type Service struct {
	hub        *hub.Hub
	authorizer auth.RoomAuthorizer
	logger     zerolog.Logger
}

// New creates a relay service backed by the given hub. A nil authorizer
// admits every join, matching how conversation ids are treated as
// capability tokens by the rest of the application.
func New(h *hub.Hub, authorizer auth.RoomAuthorizer, logger zerolog.Logger) *Service {
	if authorizer == nil {
		authorizer = auth.AllowAll()
	}
	return &Service{hub: h, authorizer: authorizer, logger: logger}
}

// Hub returns the underlying hub.
func (s *Service) Hub() *hub.Hub { return s.hub }

// Publish fans a persisted message event out to the members of its room.
// A report with zero deliveries is not an error: a message can be durably
// stored while no participant is online, and the pull-based fetch path is
// the fallback of record.
func (s *Service) Publish(ev types.MessageEvent) (types.DeliveryReport, error) {
	if ev.ID == "" || ev.SenderID == "" {
		return types.DeliveryReport{}, ErrInvalidEvent
	}
	if !types.ValidRoomID(ev.RoomID) {
		return types.DeliveryReport{}, fmt.Errorf("%w: %q", ErrInvalidRoom, ev.RoomID)
	}

	report := s.hub.Dispatch(ev)
	s.logger.Debug().
		Str("event_id", ev.ID).
		Str("room", ev.RoomID).
		Int("delivered", report.Delivered).
		Int("failed", len(report.Failed)).
		Msg("event dispatched")
	return report, nil
}

// Join subscribes a connection to a room after consulting the authorizer.
func (s *Service) Join(connID, userID, room string) error {
	if !types.ValidRoomID(room) {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}
	ok, err := s.authorizer.Authorized(userID, room)
	if err != nil {
		return fmt.Errorf("authorize join: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s, room %s", ErrUnauthorizedRoom, userID, room)
	}
	if !s.hub.Join(connID, room) {
		return fmt.Errorf("connection %s not found", connID)
	}
	s.logger.Debug().
		Str("conn_id", connID).
		Str("user_id", userID).
		Str("room", room).
		Msg("joined room")
	return nil
}

// Leave unsubscribes a connection from a room. Leaving a room never joined
// is a no-op.
func (s *Service) Leave(connID, room string) error {
	if !types.ValidRoomID(room) {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}
	s.hub.Leave(connID, room)
	s.logger.Debug().
		Str("conn_id", connID).
		Str("room", room).
		Msg("left room")
	return nil
}

// OnConnection registers a callback for new connections.
func (s *Service) OnConnection(cb func(connID string)) {
	s.hub.OnConnection(cb)
}

// OnDisconnection registers a callback for disconnections.
func (s *Service) OnDisconnection(cb func(connID string)) {
	s.hub.OnDisconnection(cb)
}

// Connections returns ids of all live connections.
func (s *Service) Connections() []string {
	return s.hub.Connections()
}

// ConnectionInfo returns info for a live connection, or an error.
func (s *Service) ConnectionInfo(connID string) (*types.ConnectionInfo, error) {
	info := s.hub.ConnectionInfo(connID)
	if info == nil {
		return nil, fmt.Errorf("connection %s not found", connID)
	}
	return info, nil
}

// Rooms returns active rooms with member counts.
func (s *Service) Rooms() map[string]int {
	return s.hub.Rooms()
}
