package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "join", "sendMessage"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// systemUser authors server-generated room notices.
const systemUser = "System"

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// JoinRequest is the body for "join".
type JoinRequest struct {
	Username string `json:"username" validate:"required"`
	Room     string `json:"room"     validate:"required"`
}

// SendMessageRequest is the body for "sendMessage". Room and Username are
// accepted on the wire for compatibility with the client, but the session's
// bound room and username are authoritative.
type SendMessageRequest struct {
	Room     string `json:"room,omitempty"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// UserStatusBody is broadcast to a room on every presence flip.
type UserStatusBody struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

// MessageBody is a chat message as delivered to room members. Time is
// RFC 3339 UTC, assigned by the server at emission.
type MessageBody struct {
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// Empty ACK body (useful for many handlers).
type AckBody struct{}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}
