package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/facilitydesk/helpdesk/internal/domain"
)

// SessionRegistry tracks which sessions are still live.
type SessionRegistry interface {
	// Open records a new session. With single-session enforcement it
	// supersedes whatever session the user held before.
	Open(ctx context.Context, session domain.Session) error
	Revoke(ctx context.Context, session domain.Session) error
	Active(ctx context.Context, session domain.Session) (bool, error)
}

// revokeIfCurrent deletes the per-user key only while it still points at
// the given session, so revoking a superseded session leaves the newer one alone.
var revokeIfCurrent = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionRegistry stores sessions in Redis with the session TTL.
type RedisSessionRegistry struct {
	client redis.UniversalClient
	single bool
	now    func() time.Time
}

// NewRedisSessionRegistry builds a registry. single enables one concurrent session per user.
func NewRedisSessionRegistry(client redis.UniversalClient, single bool) *RedisSessionRegistry {
	return &RedisSessionRegistry{client: client, single: single, now: time.Now}
}

func userKey(userID string) string       { return "session:user:" + userID }
func sessionKey(sessionID string) string { return "session:" + sessionID }

func (r *RedisSessionRegistry) ttl(session domain.Session) time.Duration {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func (r *RedisSessionRegistry) Open(ctx context.Context, session domain.Session) error {
	if r.single {
		return r.client.Set(ctx, userKey(session.UserID), session.ID, r.ttl(session)).Err()
	}
	return r.client.Set(ctx, sessionKey(session.ID), session.UserID, r.ttl(session)).Err()
}

func (r *RedisSessionRegistry) Revoke(ctx context.Context, session domain.Session) error {
	if r.single {
		return revokeIfCurrent.Run(ctx, r.client, []string{userKey(session.UserID)}, session.ID).Err()
	}
	return r.client.Del(ctx, sessionKey(session.ID)).Err()
}

func (r *RedisSessionRegistry) Active(ctx context.Context, session domain.Session) (bool, error) {
	key, want := sessionKey(session.ID), session.UserID
	if r.single {
		key, want = userKey(session.UserID), session.ID
	}
	got, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// MemorySessionRegistry keeps sessions in process memory. It serves
// single-node development runs without Redis.
type MemorySessionRegistry struct {
	mu       sync.Mutex
	single   bool
	sessions map[string]domain.Session
	current  map[string]string
	now      func() time.Time
}

func NewMemorySessionRegistry(single bool) *MemorySessionRegistry {
	return &MemorySessionRegistry{
		single:   single,
		sessions: make(map[string]domain.Session),
		current:  make(map[string]string),
		now:      time.Now,
	}
}

func (r *MemorySessionRegistry) Open(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if previous, ok := r.current[session.UserID]; ok && r.single {
		delete(r.sessions, previous)
	}
	r.sessions[session.ID] = session
	r.current[session.UserID] = session.ID
	return nil
}

func (r *MemorySessionRegistry) Revoke(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session.ID)
	if r.current[session.UserID] == session.ID {
		delete(r.current, session.UserID)
	}
	return nil
}

func (r *MemorySessionRegistry) Active(_ context.Context, session domain.Session) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok || stored.UserID != session.UserID {
		return false, nil
	}
	if r.now().After(stored.ExpiresAt) {
		delete(r.sessions, session.ID)
		return false, nil
	}
	return true, nil
}
