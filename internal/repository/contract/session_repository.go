package contract

import (
	"context"

	"site-audit-be/pkg/audit"
)

// SessionRepository keeps live audit sessions between requests.
type SessionRepository interface {
	Save(ctx context.Context, session *audit.Session) error
	Get(ctx context.Context, sessionID string) (*audit.Session, bool, error)
	Delete(ctx context.Context, sessionID string) error
}
