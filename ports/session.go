package ports

import (
	"context"

	"github.com/google/uuid"

	"autoficate/models"
)

// SessionRepository persists server-side session records.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes sessions idle longer than the given number
	// of days.
	DeleteExpired(ctx context.Context, idleDays int) (int64, error)
}
