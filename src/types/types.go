package types

import (
	"strings"
	"time"
)

// Room id prefixes. Private chats and groups share one broadcast namespace,
// so the two conversation id spaces carry distinct prefixes to keep them
// from colliding.
const (
	PrivateRoomPrefix = "chat-"
	GroupRoomPrefix   = "group-"
)

// ValidRoomID reports whether id belongs to one of the known conversation
// id spaces.
func ValidRoomID(id string) bool {
	switch {
	case strings.HasPrefix(id, PrivateRoomPrefix):
		return len(id) > len(PrivateRoomPrefix)
	case strings.HasPrefix(id, GroupRoomPrefix):
		return len(id) > len(GroupRoomPrefix)
	}
	return false
}

// Content kinds carried by a message payload.
const (
	ContentText = "text"
	ContentFile = "file"
)

// MessageEvent is an already-persisted chat message handed to the relay for
// fan-out. The durable store is the system of record; the relay never
// mutates or re-persists the event.
type MessageEvent struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	SenderID    string    `json:"senderId"`
	Content     string    `json:"content"`
	ContentKind string    `json:"contentKind"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Wire frame event names.
const (
	EventJoinRoom  = "join-room"
	EventLeaveRoom = "leave-room"
	EventMessage   = "message"
	EventConnected = "connected"
	EventError     = "connection-error"
)

// Frame is the JSON envelope exchanged over a WebSocket connection.
// Client to server frames carry only Event and Room; server to client
// message frames additionally carry the persisted record.
type Frame struct {
	Event        string        `json:"event"`
	Room         string        `json:"room,omitempty"`
	Message      *MessageEvent `json:"message,omitempty"`
	ConnectionID string        `json:"connectionId,omitempty"`
	Reason       string        `json:"reason,omitempty"`
}

// DeliveryReport summarizes one fan-out attempt.
type DeliveryReport struct {
	Room      string   `json:"room"`
	Delivered int      `json:"delivered"`
	Failed    []string `json:"failed,omitempty"`
}

// ConnectionInfo holds metadata about a live connection.
type ConnectionInfo struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ConnectedAt time.Time `json:"connectedAt"`
	Rooms       []string  `json:"rooms"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}
