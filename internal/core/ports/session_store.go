package ports

import (
	"context"
	"time"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

// SessionStore keeps server-side sessions. Get returns domain.ErrSessionNotFound
// for unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
