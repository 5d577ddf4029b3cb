package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SessionStore tracks issued tokens so they can be revoked before expiry.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func sessionKey(id string) string { return "session:" + id }

func (s *RedisSessions) Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), userID.String(), ttl).Err()
}

func (s *RedisSessions) Active(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisSessions) Revoke(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// NoSessions is used when Redis is not configured: tokens stay valid until
// they expire and logout only affects the client.
type NoSessions struct{}

func (NoSessions) Save(context.Context, string, uuid.UUID, time.Duration) error { return nil }
func (NoSessions) Active(context.Context, string) (bool, error)                 { return true, nil }
func (NoSessions) Revoke(context.Context, string) error                         { return nil }
