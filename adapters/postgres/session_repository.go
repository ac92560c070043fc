package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// CreateSession inserts a fresh session record
func (r *SessionRepositoryImpl) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_name, user_code, new_user, is_verified, cookie_consent, cookie_is_set,
			current_header, excel_file_name, image_file_name, image_url, preview_url,
			db_error_basic, db_error_advanced, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, session.ID, session.UserName, session.UserCode, session.NewUser, session.Verified,
		session.Consent, session.CookieSet, session.CurrentHeader, session.ExcelFileName,
		session.ImageFileName, session.ImageURL, session.PreviewURL,
		session.DBErrorBasic, session.DBErrorAdvanced, session.CreatedAt, session.UpdatedAt)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetSession fetches a session by id
func (r *SessionRepositoryImpl) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT id, user_name, user_code, new_user, is_verified, cookie_consent, cookie_is_set,
			current_header, excel_file_name, image_file_name, image_url, preview_url,
			db_error_basic, db_error_advanced, created_at, updated_at
		FROM sessions WHERE id = $1
	`, id)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("session not found")
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &session, nil
}

// SaveSession writes the mutable session fields
func (r *SessionRepositoryImpl) SaveSession(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET user_name = $2, user_code = $3, new_user = $4, is_verified = $5,
		    cookie_consent = $6, cookie_is_set = $7, current_header = $8,
		    excel_file_name = $9, image_file_name = $10, image_url = $11,
		    preview_url = $12, db_error_basic = $13, db_error_advanced = $14,
		    updated_at = $15
		WHERE id = $1
	`, session.ID, session.UserName, session.UserCode, session.NewUser, session.Verified,
		session.Consent, session.CookieSet, session.CurrentHeader, session.ExcelFileName,
		session.ImageFileName, session.ImageURL, session.PreviewURL,
		session.DBErrorBasic, session.DBErrorAdvanced, session.UpdatedAt)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// DeleteSession removes a session record
func (r *SessionRepositoryImpl) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// DeleteExpired removes sessions idle longer than idleDays
func (r *SessionRepositoryImpl) DeleteExpired(ctx context.Context, idleDays int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE updated_at < NOW() - ($1 || ' days')::interval
	`, idleDays)
	if err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
