package repository

import (
	"context"
	"time"

	"wanderlust/internal/domain"
)

// SessionRepository persists session records in the backing store.
type SessionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Save rewrites the session's user reference, data payload and expiry.
	Save(ctx context.Context, session *domain.Session) error
	// Touch refreshes only the expiry and activity timestamps.
	Touch(ctx context.Context, token string, updatedAt, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}
