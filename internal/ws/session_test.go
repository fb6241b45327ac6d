package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelaygo/internal/presence"
)

// fakeConn records every outbound frame; optionally fails all writes to
// simulate a dead transport.
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	failWrites bool
}

func (f *fakeConn) write(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return f.write(0, data)
}

func (f *fakeConn) events(t *testing.T) []Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, len(f.frames))
	for i, raw := range f.frames {
		require.NoError(t, json.Unmarshal(raw, &out[i]))
	}
	return out
}

func decodeBody[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Body, &v))
	return v
}

func newTestManager() (*SessionManager, *Hub, *presence.Store) {
	hub := NewHub()
	store := presence.NewStore(nil)
	return NewSessionManager(hub, store), hub, store
}

func TestSendBeforeJoinRejected(t *testing.T) {
	m, hub, _ := newTestManager()
	conn := &fakeConn{}
	sess := newSession(conn)

	err := m.Send(context.Background(), sess, "hello")
	assert.ErrorIs(t, err, ErrNotJoined)
	assert.Empty(t, conn.frames, "rejected send must produce no event")
	assert.Empty(t, hub.Members("lobby"))
}

func TestJoinRegistersOnceAndRejectsSecondJoin(t *testing.T) {
	m, hub, store := newTestManager()
	ctx := context.Background()
	conn := &fakeConn{}
	sess := newSession(conn)

	require.NoError(t, m.Join(ctx, sess, "alice", "lobby"))

	members := hub.Members("lobby")
	require.Len(t, members, 1)
	assert.Same(t, sess, members[0])

	rec, ok := store.Get("alice")
	require.True(t, ok)
	assert.True(t, rec.Online)

	err := m.Join(ctx, sess, "alice", "other")
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Len(t, hub.Members("lobby"), 1, "membership unchanged after rejected re-join")
	assert.Empty(t, hub.Members("other"))
	assert.Equal(t, "lobby", sess.Room())
}

func TestJoinRequiresUsernameAndRoom(t *testing.T) {
	m, hub, _ := newTestManager()
	sess := newSession(&fakeConn{})

	assert.ErrorIs(t, m.Join(context.Background(), sess, "", "lobby"), ErrMissingFields)
	assert.ErrorIs(t, m.Join(context.Background(), sess, "alice", ""), ErrMissingFields)
	assert.Empty(t, hub.Members("lobby"))
}

func TestJoinOrderingAndSystemNotice(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	aliceConn := &fakeConn{}
	alice := newSession(aliceConn)
	require.NoError(t, m.Join(ctx, alice, "alice", "lobby"))

	bobConn := &fakeConn{}
	bob := newSession(bobConn)
	require.NoError(t, m.Join(ctx, bob, "bob", "lobby"))

	aliceEvents := aliceConn.events(t)
	require.Len(t, aliceEvents, 3)

	assert.Equal(t, "userStatus", aliceEvents[0].Event)
	assert.Equal(t, UserStatusBody{Username: "alice", Online: true},
		decodeBody[UserStatusBody](t, aliceEvents[0]))

	assert.Equal(t, "userStatus", aliceEvents[1].Event)
	assert.Equal(t, UserStatusBody{Username: "bob", Online: true},
		decodeBody[UserStatusBody](t, aliceEvents[1]))

	assert.Equal(t, "message", aliceEvents[2].Event)
	notice := decodeBody[MessageBody](t, aliceEvents[2])
	assert.Equal(t, systemUser, notice.User)
	assert.Equal(t, "bob joined the chat", notice.Text)

	// The joiner sees its own status event but not the system notice.
	bobEvents := bobConn.events(t)
	require.Len(t, bobEvents, 1)
	assert.Equal(t, "userStatus", bobEvents[0].Event)
	assert.Equal(t, UserStatusBody{Username: "bob", Online: true},
		decodeBody[UserStatusBody](t, bobEvents[0]))
}

func TestSendFansOutToAllMembers(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	conns := map[string]*fakeConn{}
	sessions := map[string]*Session{}
	for _, name := range []string{"a", "b", "c"} {
		conn := &fakeConn{}
		sess := newSession(conn)
		require.NoError(t, m.Join(ctx, sess, name, "r"))
		conns[name] = conn
		sessions[name] = sess
	}

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, m.Send(ctx, sessions["a"], "hello"))

	for name, conn := range conns {
		events := conn.events(t)
		last := events[len(events)-1]
		require.Equal(t, "message", last.Event, "recipient %s", name)
		body := decodeBody[MessageBody](t, last)
		assert.Equal(t, "a", body.User)
		assert.Equal(t, "hello", body.Text)

		stamp, err := time.Parse(time.RFC3339, body.Time)
		require.NoError(t, err)
		assert.False(t, stamp.Before(before), "server-assigned timestamp")
	}
}

func TestSendSurvivesOneDeadRecipient(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	aConn, bConn, cConn := &fakeConn{}, &fakeConn{}, &fakeConn{}
	a, b, c := newSession(aConn), newSession(bConn), newSession(cConn)
	require.NoError(t, m.Join(ctx, a, "a", "r"))
	require.NoError(t, m.Join(ctx, b, "b", "r"))
	require.NoError(t, m.Join(ctx, c, "c", "r"))

	bConn.mu.Lock()
	bConn.failWrites = true
	bConn.mu.Unlock()

	require.NoError(t, m.Send(ctx, a, "hello"))

	for name, conn := range map[string]*fakeConn{"a": aConn, "c": cConn} {
		events := conn.events(t)
		last := events[len(events)-1]
		require.Equal(t, "message", last.Event, "recipient %s", name)
		assert.Equal(t, "hello", decodeBody[MessageBody](t, last).Text)
	}
}

func TestEmptyMessageProducesNoEvent(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	conn := &fakeConn{}
	sess := newSession(conn)
	require.NoError(t, m.Join(ctx, sess, "alice", "lobby"))
	joined := len(conn.frames)

	require.NoError(t, m.Send(ctx, sess, ""))
	require.NoError(t, m.Send(ctx, sess, "   \t\n"))

	assert.Len(t, conn.frames, joined, "whitespace-only sends emit nothing")
}

func TestDisconnectCleansUpExactlyOnce(t *testing.T) {
	m, hub, store := newTestManager()
	ctx := context.Background()

	aliceConn, bobConn := &fakeConn{}, &fakeConn{}
	alice, bob := newSession(aliceConn), newSession(bobConn)
	require.NoError(t, m.Join(ctx, alice, "alice", "lobby"))
	require.NoError(t, m.Join(ctx, bob, "bob", "lobby"))

	before := time.Now().UTC().Add(-time.Second)
	m.Disconnect(ctx, bob)

	assert.Len(t, hub.Members("lobby"), 1, "bob removed from the room")

	rec, ok := store.Get("bob")
	require.True(t, ok)
	assert.False(t, rec.Online)
	assert.False(t, rec.LastSeen.Before(before))

	aliceEvents := aliceConn.events(t)
	last := aliceEvents[len(aliceEvents)-1]
	assert.Equal(t, "userStatus", last.Event)
	assert.Equal(t, UserStatusBody{Username: "bob", Online: false},
		decodeBody[UserStatusBody](t, last))

	// Second disconnect is a no-op: no duplicate offline notification.
	seen := len(aliceConn.frames)
	m.Disconnect(ctx, bob)
	assert.Len(t, aliceConn.frames, seen)

	// A closed session rejects everything.
	assert.ErrorIs(t, m.Send(ctx, bob, "hi"), ErrSessionClosed)
	assert.ErrorIs(t, m.Join(ctx, bob, "bob", "lobby"), ErrSessionClosed)
}

func TestDisconnectBeforeJoinTouchesNothing(t *testing.T) {
	m, _, store := newTestManager()
	sess := newSession(&fakeConn{})

	m.Disconnect(context.Background(), sess)

	select {
	case tr := <-store.Transitions():
		t.Fatalf("unexpected presence transition: %+v", tr)
	default:
	}
}
