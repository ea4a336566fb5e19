package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shop-manager/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// itemUpdatableColumns guards UpdateFields against arbitrary column names.
var itemUpdatableColumns = map[string]bool{
	"name": true, "sku": true, "category_id": true, "unit": true,
	"cost_price": true, "selling_price": true, "quantity_in_stock": true,
	"reorder_level": true, "allow_fractional": true, "updated_at": true,
	"is_synced": true, "pending_operation": true,
}

// ItemRepository is the local store access path for stock items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	ListBelowReorder(ctx context.Context) ([]*domain.Item, error)
}

type itemRepository struct {
	ex Execer
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, name, sku, category_id, unit, cost_price, selling_price,
			quantity_in_stock, reorder_level, allow_fractional, created_at, updated_at,
			is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		item.ID,
		item.Name,
		item.SKU,
		item.CategoryID,
		item.Unit,
		item.CostPrice,
		item.SellingPrice,
		item.QuantityInStock,
		item.ReorderLevel,
		boolToInt(item.AllowFractional),
		item.CreatedAt,
		item.UpdatedAt,
		boolToInt(item.IsSynced),
		item.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// UpdateFields applies a partial update. Callers are responsible for
// including the sync bookkeeping fields when the change must be pushed.
func (r *itemRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for col, val := range fields {
		if !itemUpdatableColumns[col] {
			return fmt.Errorf("column not updatable: %s", col)
		}
		setClauses = append(setClauses, col+" = ?")
		args = append(args, normalizeValue(val))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	result, err := r.ex.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ex.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

const itemColumns = `id, name, sku, category_id, unit, cost_price, selling_price,
	quantity_in_stock, reorder_level, allow_fractional, created_at, updated_at,
	is_synced, pending_operation`

func (r *itemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	row := r.ex.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context) ([]*domain.Item, error) {
	return r.list(ctx, "SELECT "+itemColumns+" FROM items ORDER BY name")
}

// ListBelowReorder returns items at or under their reorder threshold.
func (r *itemRepository) ListBelowReorder(ctx context.Context) ([]*domain.Item, error) {
	return r.list(ctx, "SELECT "+itemColumns+" FROM items WHERE quantity_in_stock <= reorder_level ORDER BY name")
}

func (r *itemRepository) list(ctx context.Context, query string) ([]*domain.Item, error) {
	rows, err := r.ex.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	var (
		categoryID      sql.NullString
		allowFractional int
		isSynced        int
		pendingOp       sql.NullString
	)

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.SKU,
		&categoryID,
		&item.Unit,
		&item.CostPrice,
		&item.SellingPrice,
		&item.QuantityInStock,
		&item.ReorderLevel,
		&allowFractional,
		&item.CreatedAt,
		&item.UpdatedAt,
		&isSynced,
		&pendingOp,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		item.CategoryID = &categoryID.String
	}
	item.AllowFractional = allowFractional == 1
	item.IsSynced = isSynced == 1
	if pendingOp.Valid {
		item.PendingOp = &pendingOp.String
	}
	return item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
