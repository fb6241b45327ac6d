package syncpresence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatrelaygo/internal/presence"
	"chatrelaygo/internal/services/user"
)

const writeTimeout = 1500 * time.Millisecond

// Run drains presence transitions and mirrors them into the user store
// (online flag, and last-seen on the way offline). The in-memory store stays
// authoritative; a failed write is logged and superseded by the next
// transition for that username.
func Run(ctx context.Context, store *presence.Store, users user.IUserService) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case tr, ok := <-store.Transitions():
				if !ok {
					return
				}
				persist(ctx, users, tr)
			}
		}
	}()
}

func persist(ctx context.Context, users user.IUserService, tr presence.Transition) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := users.SetOnline(ctx, tr.Username, tr.Online); err != nil {
		zap.L().Warn("syncpresence.set_online",
			zap.String("username", tr.Username), zap.Error(err))
		return
	}
	if tr.Online {
		return
	}
	if err := users.SetLastSeen(ctx, tr.Username, tr.At); err != nil {
		zap.L().Warn("syncpresence.set_last_seen",
			zap.String("username", tr.Username), zap.Error(err))
	}
}
