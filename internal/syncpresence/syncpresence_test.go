package syncpresence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelaygo/internal/presence"
	"chatrelaygo/internal/services/user"
)

type call struct {
	username string
	online   bool
	lastSeen time.Time
}

type recordingUserService struct {
	user.IUserService

	mu    sync.Mutex
	calls []call
}

func (r *recordingUserService) SetOnline(_ context.Context, username string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{username: username, online: online})
	return nil
}

func (r *recordingUserService) SetLastSeen(_ context.Context, username string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{username: username, lastSeen: t})
	return nil
}

func (r *recordingUserService) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func TestFlushesTransitions(t *testing.T) {
	store := presence.NewStore(nil)
	users := &recordingUserService{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Run(ctx, store, users)

	store.SetOnline(ctx, "alice")
	store.SetOffline(ctx, "alice")

	require.Eventually(t, func() bool {
		return len(users.snapshot()) == 3
	}, time.Second, 10*time.Millisecond)

	calls := users.snapshot()
	assert.Equal(t, call{username: "alice", online: true}, calls[0])
	assert.Equal(t, "alice", calls[1].username)
	assert.False(t, calls[1].online)
	assert.False(t, calls[2].lastSeen.IsZero(), "offline also stamps last-seen")
}
