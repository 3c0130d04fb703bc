package hub

// Room membership. Join and Leave update the room's member set and the
// connection's joined set inside one critical section, so the two sides
// are never observed half-updated.

// Join adds a connection to a room, creating the room on first join.
// Joining a room already joined is a no-op. Returns false only when the
// connection is unknown.
func (h *Hub) Join(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][connID] = true
	c.addRoom(room)
	return true
}

// Leave removes a connection from a room. Leaving a room the connection is
// not a member of is a no-op. A room left with zero members is deleted.
func (h *Hub) Leave(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	if c, ok := h.clients[connID]; ok {
		c.removeRoom(room)
	}
	return true
}

// MembersOf returns the connection ids subscribed to a room. An unknown or
// empty room yields an empty slice, never an error; "room does not exist"
// and "room has zero online members" are the same condition here.
func (h *Hub) MembersOf(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}
