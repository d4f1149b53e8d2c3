package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/minibank/internal/models"
	"github.com/hongminglow/minibank/internal/storage"
)

const userColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName)
	created, err := scanUser(row)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUserByEmail fetches a user by email address. Matching is exact.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateUser writes the mutable profile fields of user.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName)
	updated, err := scanUser(row)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return updated, nil
}

// DeleteUser removes a user that owns no accounts.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	var owned int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE user_id = $1`, id).Scan(&owned); err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if owned > 0 {
		return storage.ErrHasDependents
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return storage.ErrHasDependents
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}
