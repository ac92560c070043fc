package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

// ImageRepositoryImpl implements ImageRepository for PostgreSQL
type ImageRepositoryImpl struct {
	db *sqlx.DB
}

// NewImageRepository creates a new PostgreSQL image repository
func NewImageRepository(db *sqlx.DB) ports.ImageRepository {
	return &ImageRepositoryImpl{db: db}
}

// UpsertImage inserts the base image record or replaces the prior one
func (r *ImageRepositoryImpl) UpsertImage(ctx context.Context, asset *models.ImageAsset) error {
	asset.UpdatedAt = time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = asset.UpdatedAt
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO images (user_code, file_name, url, preview_url, exports, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_code) DO UPDATE
		SET file_name = EXCLUDED.file_name, url = EXCLUDED.url,
		    preview_url = EXCLUDED.preview_url, updated_at = EXCLUDED.updated_at
		RETURNING id
	`, asset.UserCode, asset.FileName, asset.URL, asset.PreviewURL,
		asset.Exports, asset.CreatedAt, asset.UpdatedAt).Scan(&asset.ID)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetImage fetches the base image record for a user
func (r *ImageRepositoryImpl) GetImage(ctx context.Context, userCode string) (*models.ImageAsset, error) {
	var asset models.ImageAsset
	err := r.db.GetContext(ctx, &asset, `
		SELECT id, user_code, file_name, url, preview_url, exports, created_at, updated_at
		FROM images WHERE user_code = $1
	`, userCode)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("no base image for user")
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &asset, nil
}

// DeleteImage removes the base image record
func (r *ImageRepositoryImpl) DeleteImage(ctx context.Context, userCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE user_code = $1`, userCode)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// IncrementExports bumps the export counter
func (r *ImageRepositoryImpl) IncrementExports(ctx context.Context, userCode string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE images SET exports = exports + 1, updated_at = NOW() WHERE user_code = $1
	`, userCode)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}
