package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shop-manager/internal/domain"
)

type RestockRepository interface {
	// Create persists the restock header and its lines. Stock increments
	// run alongside it in the same Store.InTx at the service layer.
	Create(ctx context.Context, restock *domain.Restock, lines []*domain.RestockItem) error
	List(ctx context.Context) ([]*domain.Restock, error)
}

type restockRepository struct {
	ex Execer
}

func (r *restockRepository) Create(ctx context.Context, restock *domain.Restock, lines []*domain.RestockItem) error {
	query := `
		INSERT INTO restocks (id, supplier_name, restock_date, total_amount, notes,
			created_by, created_at, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		restock.ID,
		restock.SupplierName,
		restock.RestockDate,
		restock.TotalAmount,
		restock.Notes,
		restock.CreatedBy,
		restock.CreatedAt,
		boolToInt(restock.IsSynced),
		restock.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create restock: %w", err)
	}

	lineQuery := `
		INSERT INTO restock_items (id, restock_id, item_id, quantity, unit_cost, created_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, line := range lines {
		_, err := r.ex.ExecContext(
			ctx,
			lineQuery,
			line.ID,
			line.RestockID,
			line.ItemID,
			line.Quantity,
			line.UnitCost,
			line.CreatedAt,
			boolToInt(line.IsSynced),
		)
		if err != nil {
			return fmt.Errorf("failed to create restock item: %w", err)
		}
	}
	return nil
}

func (r *restockRepository) List(ctx context.Context) ([]*domain.Restock, error) {
	rows, err := r.ex.QueryContext(ctx, `
		SELECT id, supplier_name, restock_date, total_amount, notes, created_by,
			created_at, is_synced, pending_operation
		FROM restocks ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restocks: %w", err)
	}
	defer rows.Close()

	restocks := []*domain.Restock{}
	for rows.Next() {
		restock := &domain.Restock{}
		var (
			notes     sql.NullString
			isSynced  int
			pendingOp sql.NullString
		)
		err := rows.Scan(
			&restock.ID,
			&restock.SupplierName,
			&restock.RestockDate,
			&restock.TotalAmount,
			&notes,
			&restock.CreatedBy,
			&restock.CreatedAt,
			&isSynced,
			&pendingOp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restock: %w", err)
		}
		if notes.Valid {
			restock.Notes = &notes.String
		}
		restock.IsSynced = isSynced == 1
		if pendingOp.Valid {
			restock.PendingOp = &pendingOp.String
		}
		restocks = append(restocks, restock)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restocks: %w", err)
	}
	return restocks, nil
}
