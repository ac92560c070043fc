package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

// ItemSetRepositoryImpl implements ItemSetRepository for PostgreSQL
type ItemSetRepositoryImpl struct {
	db *sqlx.DB
}

// NewItemSetRepository creates a new PostgreSQL item set repository
func NewItemSetRepository(db *sqlx.DB) ports.ItemSetRepository {
	return &ItemSetRepositoryImpl{db: db}
}

const itemSetColumns = `id, user_code, heading, items, position_x, position_y, font_size, font_name, color, created_at`

// CreateItemSet inserts a heading with its values and layout
func (r *ItemSetRepositoryImpl) CreateItemSet(ctx context.Context, set *models.ItemSet) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO item_sets (user_code, heading, items, position_x, position_y, font_size, font_name, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, set.UserCode, set.Heading, set.Items, set.PositionX, set.PositionY,
		set.FontSize, set.FontName, set.Color, set.CreatedAt).Scan(&set.ID)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// UpdateItemSet saves the mutable heading fields
func (r *ItemSetRepositoryImpl) UpdateItemSet(ctx context.Context, set *models.ItemSet) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE item_sets
		SET heading = $2, items = $3, position_x = $4, position_y = $5,
		    font_size = $6, font_name = $7, color = $8
		WHERE id = $1
	`, set.ID, set.Heading, set.Items, set.PositionX, set.PositionY,
		set.FontSize, set.FontName, set.Color)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetItemSet fetches one heading for a user
func (r *ItemSetRepositoryImpl) GetItemSet(ctx context.Context, userCode, heading string) (*models.ItemSet, error) {
	var set models.ItemSet
	err := r.db.GetContext(ctx, &set, fmt.Sprintf(`
		SELECT %s FROM item_sets WHERE user_code = $1 AND heading = $2
	`, itemSetColumns), userCode, heading)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("no heading %q", heading))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &set, nil
}

// ListItemSets returns all headings for a user in insertion order
func (r *ItemSetRepositoryImpl) ListItemSets(ctx context.Context, userCode string) ([]*models.ItemSet, error) {
	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf(`
		SELECT %s FROM item_sets WHERE user_code = $1 ORDER BY id
	`, itemSetColumns), userCode)

	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer rows.Close()

	var sets []*models.ItemSet
	for rows.Next() {
		var set models.ItemSet
		if err := rows.StructScan(&set); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
		sets = append(sets, &set)
	}
	return sets, rows.Err()
}

// ListHeadings returns the ordered heading names for a user
func (r *ItemSetRepositoryImpl) ListHeadings(ctx context.Context, userCode string) ([]string, error) {
	var headings []string
	err := r.db.SelectContext(ctx, &headings, `
		SELECT heading FROM item_sets WHERE user_code = $1 ORDER BY id
	`, userCode)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return headings, nil
}

// LatestItemSet returns the most recently created heading for a user
func (r *ItemSetRepositoryImpl) LatestItemSet(ctx context.Context, userCode string) (*models.ItemSet, error) {
	var set models.ItemSet
	err := r.db.GetContext(ctx, &set, fmt.Sprintf(`
		SELECT %s FROM item_sets WHERE user_code = $1 ORDER BY created_at DESC, id DESC LIMIT 1
	`, itemSetColumns), userCode)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("no headings for user")
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &set, nil
}

// DeleteItemSet removes one heading
func (r *ItemSetRepositoryImpl) DeleteItemSet(ctx context.Context, userCode, heading string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM item_sets WHERE user_code = $1 AND heading = $2
	`, userCode, heading)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound(fmt.Sprintf("no heading %q", heading))
	}
	return nil
}

// DeleteAllForUser removes every heading a user owns
func (r *ItemSetRepositoryImpl) DeleteAllForUser(ctx context.Context, userCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM item_sets WHERE user_code = $1`, userCode)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}
