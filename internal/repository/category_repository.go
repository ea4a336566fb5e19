package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-manager/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryRepository struct {
	ex Execer
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, created_at, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.CreatedAt,
		boolToInt(category.IsSynced),
		category.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ex.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	row := r.ex.QueryRowContext(ctx,
		"SELECT id, name, created_at, is_synced, pending_operation FROM categories WHERE id = ?", id)

	category, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT id, name, created_at, is_synced, pending_operation FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	var (
		isSynced  int
		pendingOp sql.NullString
	)

	if err := row.Scan(&category.ID, &category.Name, &category.CreatedAt, &isSynced, &pendingOp); err != nil {
		return nil, err
	}

	category.IsSynced = isSynced == 1
	if pendingOp.Valid {
		category.PendingOp = &pendingOp.String
	}
	return category, nil
}
