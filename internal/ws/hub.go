package ws

import "sync"

// Hub is the room registry: room name -> set of member sessions. Membership
// links are non-owning; session cleanup is driven by the session manager.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*room)} }

// AddMember inserts session into the room's set, creating the room if absent.
// The insert happens under the registry lock so it cannot land in a room a
// concurrent RemoveMember has just dropped.
func (h *Hub) AddMember(name string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[name]
	if !ok {
		r = newRoom()
		h.rooms[name] = r
	}
	r.add(s)
}

// RemoveMember removes session from the room's set; no error if the room or
// the member is absent, which keeps disconnect idempotent. Rooms are dropped
// once their last member leaves.
func (h *Hub) RemoveMember(name string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[name]
	if !ok {
		return
	}
	if r.remove(s) {
		delete(h.rooms, name)
	}
}

// Members returns the current member snapshot; an unknown room yields an
// empty slice, never an error.
func (h *Hub) Members(name string) []*Session {
	h.mu.RLock()
	r, ok := h.rooms[name]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.snapshot()
}
