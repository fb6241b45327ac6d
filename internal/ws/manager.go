package ws

import (
	"context"
	"strings"
	"sync"
	"time"

	"chatrelaygo/internal/presence"
)

// SessionManager owns every session's lifecycle and is the only writer of the
// room registry and the presence store. Events caused by transitions on the
// same room are emitted in the order the transitions are processed; sessions
// in different rooms never contend.
type SessionManager struct {
	hub        *Hub
	presence   *presence.Store
	dispatcher *Dispatcher

	roomLocks sync.Map // room name -> *sync.Mutex
}

func NewSessionManager(hub *Hub, store *presence.Store) *SessionManager {
	return &SessionManager{
		hub:        hub,
		presence:   store,
		dispatcher: NewDispatcher(hub),
	}
}

func (m *SessionManager) roomLock(name string) *sync.Mutex {
	lk, _ := m.roomLocks.LoadOrStore(name, &sync.Mutex{})
	return lk.(*sync.Mutex)
}

// Join binds username and room to the session, registers it in the room and
// flips presence online. Valid only while the session has no room yet; a
// second join is a protocol error and leaves membership untouched.
func (m *SessionManager) Join(ctx context.Context, s *Session, username, room string) error {
	if username == "" || room == "" {
		return ErrMissingFields
	}

	s.mu.Lock()
	switch s.state {
	case stateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case stateJoined:
		s.mu.Unlock()
		return ErrAlreadyJoined
	}
	s.state = stateJoined
	s.username = username
	s.room = room
	s.mu.Unlock()

	lk := m.roomLock(room)
	lk.Lock()
	defer lk.Unlock()

	m.hub.AddMember(room, s)
	m.presence.SetOnline(ctx, username)

	m.dispatcher.Emit(room, "userStatus", UserStatusBody{Username: username, Online: true}, nil)
	m.dispatcher.Emit(room, "message", MessageBody{
		User: systemUser,
		Text: username + " joined the chat",
		Time: now(),
	}, s)
	return nil
}

// Send broadcasts text to the session's bound room with a server-assigned
// timestamp. Whitespace-only input is dropped without producing an event.
func (m *SessionManager) Send(ctx context.Context, s *Session, text string) error {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != stateJoined {
		s.mu.Unlock()
		return ErrNotJoined
	}
	username, room := s.username, s.room
	s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lk := m.roomLock(room)
	lk.Lock()
	defer lk.Unlock()

	m.dispatcher.Emit(room, "message", MessageBody{
		User: username,
		Text: text,
		Time: now(),
	}, nil)
	return nil
}

// Disconnect closes the session. Idempotent: only the first call per session
// deregisters membership, flips presence offline and notifies the room. A
// session that never joined leaves no presence trace.
func (m *SessionManager) Disconnect(ctx context.Context, s *Session) {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	wasJoined := s.state == stateJoined
	username, room := s.username, s.room
	s.state = stateClosed
	s.mu.Unlock()

	if !wasJoined {
		return
	}

	lk := m.roomLock(room)
	lk.Lock()
	defer lk.Unlock()

	m.hub.RemoveMember(room, s)
	m.presence.SetOffline(ctx, username)
	m.dispatcher.Emit(room, "userStatus", UserStatusBody{Username: username, Online: false}, nil)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
