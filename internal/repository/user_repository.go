package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-manager/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository caches remote accounts for offline display and audit
// attribution. Authentication stays with the remote backend.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type userRepository struct {
	ex Execer
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, full_name, role, created_at, is_synced)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email,
			full_name = excluded.full_name, role = excluded.role
	`

	_, err := r.ex.ExecContext(ctx, query, user.ID, user.Email, user.FullName, string(user.Role), user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	var role string

	err := r.ex.QueryRowContext(ctx,
		"SELECT id, email, full_name, role, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &user.FullName, &role, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	user.Role = domain.UserRole(role)
	return user, nil
}
