package memory

import (
	"context"
	"time"

	"site-audit-be/internal/repository/contract"
	"site-audit-be/pkg/audit"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions in process. Idle sessions expire
// after ttl and are purged every ten minutes.
func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(_ context.Context, session *audit.Session) error {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*audit.Session, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*audit.Session), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}
