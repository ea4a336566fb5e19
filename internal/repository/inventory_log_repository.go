package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shop-manager/internal/domain"
)

// InventoryLogRepository is append-only: the audit trail exposes no update
// or delete path at all.
type InventoryLogRepository interface {
	Create(ctx context.Context, log *domain.InventoryLog) error
	List(ctx context.Context) ([]*domain.InventoryLog, error)
	ListForItem(ctx context.Context, itemID string) ([]*domain.InventoryLog, error)
}

type inventoryLogRepository struct {
	ex Execer
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *domain.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (id, item_id, item_name, user_id, user_name, change_type,
			field_changed, old_value, new_value, reason, created_at, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		log.ID,
		log.ItemID,
		log.ItemName,
		log.UserID,
		log.UserName,
		string(log.ChangeType),
		log.FieldChanged,
		log.OldValue,
		log.NewValue,
		log.Reason,
		log.CreatedAt,
		boolToInt(log.IsSynced),
		log.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory log: %w", err)
	}
	return nil
}

const inventoryLogColumns = `id, item_id, item_name, user_id, user_name, change_type,
	field_changed, old_value, new_value, reason, created_at, is_synced, pending_operation`

func (r *inventoryLogRepository) List(ctx context.Context) ([]*domain.InventoryLog, error) {
	return r.list(ctx, "SELECT "+inventoryLogColumns+" FROM inventory_logs ORDER BY created_at DESC")
}

func (r *inventoryLogRepository) ListForItem(ctx context.Context, itemID string) ([]*domain.InventoryLog, error) {
	return r.list(ctx,
		"SELECT "+inventoryLogColumns+" FROM inventory_logs WHERE item_id = ? ORDER BY created_at DESC",
		itemID)
}

func (r *inventoryLogRepository) list(ctx context.Context, query string, args ...any) ([]*domain.InventoryLog, error) {
	rows, err := r.ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	defer rows.Close()

	logs := []*domain.InventoryLog{}
	for rows.Next() {
		log := &domain.InventoryLog{}
		var (
			changeType string
			isSynced   int
			pendingOp  sql.NullString
		)
		err := rows.Scan(
			&log.ID,
			&log.ItemID,
			&log.ItemName,
			&log.UserID,
			&log.UserName,
			&changeType,
			&log.FieldChanged,
			&log.OldValue,
			&log.NewValue,
			&log.Reason,
			&log.CreatedAt,
			&isSynced,
			&pendingOp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory log: %w", err)
		}
		log.ChangeType = domain.ChangeType(changeType)
		log.IsSynced = isSynced == 1
		if pendingOp.Valid {
			log.PendingOp = &pendingOp.String
		}
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory logs: %w", err)
	}
	return logs, nil
}
