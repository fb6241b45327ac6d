package presence

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisPresenceKeyPrefix = "presence:"
	feedBuffer             = 256
)

// Record is the authoritative per-username presence state. LastSeen is only
// meaningful after the first transition to offline.
type Record struct {
	Username string    `json:"username"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// Transition is pushed on every effective online/offline flip and drained by
// the background flusher that mirrors presence into the user store.
type Transition struct {
	Username string
	Online   bool
	At       time.Time
}

// Store keeps presence in memory and write-throughs each transition to a
// Redis hash so other processes get a warm read path. The in-memory map stays
// authoritative; mirror failures are logged and never block a transition.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record

	rdc  *redis.Client // optional mirror, may be nil
	feed chan Transition
}

// NewStore creates a presence store. rdc may be nil to run without the
// Redis mirror (tests, single-binary dev setups).
func NewStore(rdc *redis.Client) *Store {
	return &Store{
		records: make(map[string]Record),
		rdc:     rdc,
		feed:    make(chan Transition, feedBuffer),
	}
}

// SetOnline marks username online. Redundant calls are no-ops.
func (s *Store) SetOnline(ctx context.Context, username string) {
	s.mu.Lock()
	rec, seen := s.records[username]
	if seen && rec.Online {
		s.mu.Unlock()
		return
	}
	rec.Username = username
	rec.Online = true
	s.records[username] = rec
	s.mu.Unlock()

	s.mirror(ctx, username, "online", "1")
	s.push(Transition{Username: username, Online: true, At: time.Now().UTC()})
}

// SetOffline marks username offline and stamps last-seen. Redundant calls are
// no-ops and keep the earlier last-seen.
func (s *Store) SetOffline(ctx context.Context, username string) {
	now := time.Now().UTC()

	s.mu.Lock()
	rec, seen := s.records[username]
	if seen && !rec.Online {
		s.mu.Unlock()
		return
	}
	rec.Username = username
	rec.Online = false
	rec.LastSeen = now
	s.records[username] = rec
	s.mu.Unlock()

	s.mirror(ctx, username,
		"online", "0",
		"last_seen", strconv.FormatInt(now.Unix(), 10),
	)
	s.push(Transition{Username: username, Online: false, At: now})
}

// Get returns the record for a username, or ok=false for a username this
// process has never seen.
func (s *Store) Get(username string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[username]
	return rec, ok
}

// Lookup is Get with a Redis fallback for usernames last seen by another
// process. Callers still need their own store-of-record fallback.
func (s *Store) Lookup(ctx context.Context, username string) (Record, bool) {
	if rec, ok := s.Get(username); ok {
		return rec, true
	}
	if s.rdc == nil {
		return Record{}, false
	}

	data, err := s.rdc.HGetAll(ctx, redisPresenceKeyPrefix+username).Result()
	if err != nil || len(data) == 0 {
		return Record{}, false
	}

	rec := Record{Username: username, Online: data["online"] == "1"}
	if v, err := strconv.ParseInt(data["last_seen"], 10, 64); err == nil {
		rec.LastSeen = time.Unix(v, 0).UTC()
	}
	return rec, true
}

// Transitions exposes the flusher feed.
func (s *Store) Transitions() <-chan Transition {
	return s.feed
}

func (s *Store) mirror(ctx context.Context, username string, fieldPairs ...any) {
	if s.rdc == nil {
		return
	}
	if err := s.rdc.HSet(ctx, redisPresenceKeyPrefix+username, fieldPairs...).Err(); err != nil {
		zap.L().Warn("presence.mirror", zap.String("username", username), zap.Error(err))
	}
}

func (s *Store) push(t Transition) {
	select {
	case s.feed <- t:
	default:
		// The flusher fell behind; presence columns are a best-effort mirror.
		zap.L().Warn("presence.feed_full", zap.String("username", t.Username))
	}
}
