package ws

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Protocol errors: reported back to the caller, the connection stays open and
// no state is mutated.
var (
	ErrAlreadyJoined = errors.New("already joined a room")
	ErrNotJoined     = errors.New("join a room first")
	ErrSessionClosed = errors.New("session closed")
	ErrMissingFields = errors.New("username and room are required")
)

type sessionState int

const (
	stateConnected sessionState = iota // accepted, no room yet
	stateJoined                        // username and room bound
	stateClosed                        // terminal
)

// Session is the server-side state of one live connection. Username and room
// are bound once, on the first successful join, and read back on disconnect;
// the connection's transport never has to be inspected for membership.
type Session struct {
	id   string
	conn eventWriter

	mu       sync.Mutex
	state    sessionState
	username string
	room     string
}

func newSession(conn eventWriter) *Session {
	return &Session{id: uuid.NewString(), conn: conn}
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}
