package hub

import (
	"github.com/webchat/relay/src/types"
)

// Dispatch fans a persisted message event out to every connection currently
// subscribed to its room and returns what happened. The hand-off goes
// through the hub event loop, so events dispatched in order for a room are
// delivered in that order to every member. Dispatch never blocks on
// persistence; the event is assumed durably written before this call.
func (h *Hub) Dispatch(ev types.MessageEvent) types.DeliveryReport {
	reply := make(chan types.DeliveryReport, 1)
	select {
	case h.dispatch <- dispatchReq{event: ev, reply: reply}:
	case <-h.done:
		return types.DeliveryReport{Room: ev.RoomID}
	}
	// The request may still be queued when Stop fires; don't wait on a
	// reply the loop will never send.
	select {
	case report := <-reply:
		return report
	case <-h.done:
		return types.DeliveryReport{Room: ev.RoomID}
	}
}

// Publish is the fire-and-forget form of Dispatch, used where the caller
// has no use for the delivery report.
func (h *Hub) Publish(ev types.MessageEvent) {
	select {
	case h.dispatch <- dispatchReq{event: ev}:
	case <-h.done:
	}
}

// BroadcastLocal delivers an event received from the bridge to local
// subscribers only. It does not re-publish, preventing relay loops.
func (h *Hub) BroadcastLocal(ev types.MessageEvent) {
	select {
	case h.localCast <- ev:
	case <-h.done:
	}
}

// deliver pushes the event to each member of its room. A failed push means
// the connection stopped draining or already closed; it is cleaned up on
// the spot and the remaining members still get the event.
func (h *Hub) deliver(ev types.MessageEvent) types.DeliveryReport {
	report := types.DeliveryReport{Room: ev.RoomID}

	h.mu.RLock()
	members, ok := h.rooms[ev.RoomID]
	if !ok {
		h.mu.RUnlock()
		return report
	}
	// Copy member ids to avoid holding the lock during sends.
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	frame := types.Frame{Event: types.EventMessage, Room: ev.RoomID, Message: &ev}
	for _, id := range ids {
		h.mu.RLock()
		client, exists := h.clients[id]
		h.mu.RUnlock()
		if !exists {
			continue
		}
		if client.TrySend(frame) {
			report.Delivered++
			continue
		}
		report.Failed = append(report.Failed, id)
		h.logger.Warn().
			Str("conn_id", id).
			Str("room", ev.RoomID).
			Str("event_id", ev.ID).
			Msg("push failed, dropping connection")
		h.removeClient(client)
	}
	return report
}

// forwardToBridge hands the event to the bridge if one is attached.
func (h *Hub) forwardToBridge(ev types.MessageEvent) {
	h.mu.RLock()
	b := h.bridge
	h.mu.RUnlock()

	if b == nil || !b.Available() {
		return
	}
	if err := b.Publish(ev); err != nil {
		h.logger.Error().Err(err).Str("event_id", ev.ID).Msg("bridge publish failed")
	}
}
