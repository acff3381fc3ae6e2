package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "session:"

// ErrSessionExpired is returned when creating a session whose CreatedAt is
// already older than SessionTTL.
var ErrSessionExpired = errors.New("session already expired")

// RedisSessionStore keeps sessions in Redis so they survive restarts and are
// shared between instances.
type RedisSessionStore struct {
	client redis.UniversalClient
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore wraps an existing go-redis client.
func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Create stores s as JSON with an expiry of SessionTTL from s.CreatedAt.
// PRE: s.UserID > 0
// POST: key session:<token> exists until the session expires
func (rs *RedisSessionStore) Create(ctx context.Context, s Session) (string, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	ttl := SessionTTL - time.Since(s.CreatedAt)
	if ttl <= 0 {
		return "", ErrSessionExpired
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := rs.client.Set(ctx, redisSessionPrefix+token, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get loads the session for token. Redis failures are logged and treated as
// an anonymous request.
func (rs *RedisSessionStore) Get(ctx context.Context, token string) (Session, bool) {
	data, err := rs.client.Get(ctx, redisSessionPrefix+token).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("internal_error", "op", "session_get", "error", err.Error())
		}
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("session_corrupt", "error", err.Error())
		return Session{}, false
	}
	if s.expired(time.Now()) {
		return Session{}, false
	}
	return s, true
}

// Delete removes the session for token.
func (rs *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := rs.client.Del(ctx, redisSessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
