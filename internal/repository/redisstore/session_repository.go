package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"site-audit-be/internal/repository/contract"
	"site-audit-be/pkg/audit"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "audit:session:"

// SessionRepository stores sessions as JSON so any instance behind the load
// balancer can continue an audit. Every save refreshes the TTL.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) Save(ctx context.Context, session *audit.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	return r.client.Set(ctx, Key(session.ID), data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*audit.Session, bool, error) {
	data, err := r.client.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var s audit.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &s, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, Key(sessionID)).Err()
}
