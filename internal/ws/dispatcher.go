package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Dispatcher fans an event out to every session in a room's member snapshot.
type Dispatcher struct {
	hub *Hub
}

func NewDispatcher(hub *Hub) *Dispatcher { return &Dispatcher{hub: hub} }

// Emit delivers {event, body} to every member of room, minus except when set.
// Delivery is attempted per recipient: one failed write is logged and the
// remaining recipients still get the event. Emitting to an empty or unknown
// room is a no-op.
func (d *Dispatcher) Emit(roomName, event string, body any, except *Session) {
	members := d.hub.Members(roomName)
	if len(members) == 0 {
		return
	}

	data, err := json.Marshal(map[string]any{"event": event, "body": body})
	if err != nil {
		zap.L().Error("ws.emit_marshal", zap.String("event", event), zap.Error(err))
		return
	}

	for _, s := range members {
		if s == except {
			continue
		}
		if err := s.conn.write(websocket.TextMessage, data); err != nil {
			// The recipient's reader loop will resolve the dead connection
			// into its own disconnect transition.
			zap.L().Debug("ws.emit_write",
				zap.String("room", roomName),
				zap.String("event", event),
				zap.String("session", s.id),
				zap.Error(err))
		}
	}
}
