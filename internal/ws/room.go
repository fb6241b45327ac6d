package ws

import "sync"

type room struct {
	mu      sync.Mutex
	members map[*Session]struct{}
}

func newRoom() *room { return &room{members: map[*Session]struct{}{}} }

func (r *room) add(s *Session) {
	r.mu.Lock()
	r.members[s] = struct{}{}
	r.mu.Unlock()
}

// remove deletes s if present and reports whether the room is now empty.
func (r *room) remove(s *Session) bool {
	r.mu.Lock()
	delete(r.members, s)
	empty := len(r.members) == 0
	r.mu.Unlock()
	return empty
}

// snapshot returns the member set at the moment of the call; broadcasting to
// the snapshot is the defined fan-out semantics.
func (r *room) snapshot() []*Session {
	r.mu.Lock()
	members := make([]*Session, 0, len(r.members))
	for s := range r.members {
		members = append(members, s)
	}
	r.mu.Unlock()
	return members
}
