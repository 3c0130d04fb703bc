package bridge

import "github.com/webchat/relay/src/types"

// Bridge relays persisted message events between relay instances. Room
// membership stays process-local on every instance; only the events travel.
type Bridge interface {
	// Publish sends an event to all other instances via the bridge.
	Publish(ev types.MessageEvent) error

	// Start begins listening for events from other instances.
	Start() error

	// Stop shuts down the bridge connection.
	Stop() error

	// Available reports whether the bridge is connected and operational.
	Available() bool
}

// BroadcastTarget is implemented by the Hub to receive events from the bridge.
type BroadcastTarget interface {
	BroadcastLocal(ev types.MessageEvent)
}
