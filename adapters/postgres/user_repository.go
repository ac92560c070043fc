package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

const userColumns = `id, email, first_name, last_name, username, unique_code, password_hash, is_active, is_verified, created_at, updated_at`

// CreateUser inserts a new account
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, username, unique_code, password_hash, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, user.ID, user.Email, user.FirstName, user.LastName, user.Username, user.UniqueCode,
		user.PasswordHash, user.IsActive, user.IsVerified, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// UpdateUser saves the mutable account fields
func (r *UserRepositoryImpl) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, username = $5,
		    password_hash = $6, is_active = $7, is_verified = $8, updated_at = $9
		WHERE id = $1
	`, user.ID, user.Email, user.FirstName, user.LastName, user.Username,
		user.PasswordHash, user.IsActive, user.IsVerified, user.UpdatedAt)

	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetUserByCode fetches the account owning a unique code
func (r *UserRepositoryImpl) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, fmt.Sprintf(`
		SELECT %s FROM users WHERE unique_code = $1
	`, userColumns), code)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("no user with code %s", code))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &user, nil
}

// GetUserByEmail fetches an account by exact email
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, fmt.Sprintf(`
		SELECT %s FROM users WHERE email = $1
	`, userColumns), email)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("no user with that email")
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &user, nil
}

// escapeLike quotes LIKE metacharacters so an address containing them
// only matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// ListUnregisteredByEmail finds placeholder accounts whose decorated
// email embeds the given address
func (r *UserRepositoryImpl) ListUnregisteredByEmail(ctx context.Context, email string) ([]*models.User, error) {
	rows, err := r.db.QueryxContext(ctx, fmt.Sprintf(`
		SELECT %s FROM users
		WHERE email LIKE $1 AND email LIKE $2
	`, userColumns), "%"+escapeLike(email)+"%", "%"+models.UnregisteredSuffix)

	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.StructScan(&user); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// DeleteUser removes an account
func (r *UserRepositoryImpl) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// CodeExists reports whether a unique code is already taken
func (r *UserRepositoryImpl) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM users WHERE unique_code = $1)
	`, code)
	if err != nil {
		return false, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return exists, nil
}
