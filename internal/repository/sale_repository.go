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
	ErrSaleNotFound        = errors.New("sale not found")
	ErrDuplicateSaleNumber = errors.New("duplicate sale number")
)

type SaleRepository interface {
	// Create persists the sale header and its denormalized lines.
	// Callers run it inside a Store.InTx together with stock updates
	// and outbox entries.
	Create(ctx context.Context, sale *domain.Sale, lines []*domain.SaleItem) error
	FindByID(ctx context.Context, id string) (*domain.Sale, []*domain.SaleItem, error)
	List(ctx context.Context) ([]*domain.Sale, error)
	// ListByDateRange filters on sale_date; ISO-8601 days compare
	// lexicographically so plain string comparison is correct.
	ListByDateRange(ctx context.Context, from, to string) ([]*domain.Sale, error)
	UpdateStatus(ctx context.Context, id string, status domain.SaleStatus, reason *string, updatedAt string) error
}

type saleRepository struct {
	ex Execer
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale, lines []*domain.SaleItem) error {
	query := `
		INSERT INTO sales (id, sale_number, status, subtotal, additional_charges, total_amount,
			profit_amount, payment_method, created_by, sale_date, created_at, updated_at,
			return_reason, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		sale.ID,
		sale.SaleNumber,
		string(sale.Status),
		sale.Subtotal,
		sale.AdditionalCharges,
		sale.TotalAmount,
		sale.ProfitAmount,
		string(sale.PaymentMethod),
		sale.CreatedBy,
		sale.SaleDate,
		sale.CreatedAt,
		sale.UpdatedAt,
		sale.ReturnReason,
		boolToInt(sale.IsSynced),
		sale.PendingOp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSaleNumber
		}
		return fmt.Errorf("failed to create sale: %w", err)
	}

	lineQuery := `
		INSERT INTO sale_items (id, sale_id, item_id, item_name, quantity, unit_price,
			cost_price, line_total, profit_margin, created_at, is_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, line := range lines {
		_, err := r.ex.ExecContext(
			ctx,
			lineQuery,
			line.ID,
			line.SaleID,
			line.ItemID,
			line.ItemName,
			line.Quantity,
			line.UnitPrice,
			line.CostPrice,
			line.LineTotal,
			line.ProfitMargin,
			line.CreatedAt,
			boolToInt(line.IsSynced),
		)
		if err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}
	}
	return nil
}

const saleColumns = `id, sale_number, status, subtotal, additional_charges, total_amount,
	profit_amount, payment_method, created_by, sale_date, created_at, updated_at,
	return_reason, is_synced, pending_operation`

func (r *saleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, []*domain.SaleItem, error) {
	row := r.ex.QueryRowContext(ctx, "SELECT "+saleColumns+" FROM sales WHERE id = ?", id)

	sale, err := scanSale(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrSaleNotFound
		}
		return nil, nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	lines, err := r.linesForSale(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sale, lines, nil
}

func (r *saleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	return r.list(ctx, "SELECT "+saleColumns+" FROM sales ORDER BY created_at DESC")
}

func (r *saleRepository) ListByDateRange(ctx context.Context, from, to string) ([]*domain.Sale, error) {
	return r.list(ctx,
		"SELECT "+saleColumns+" FROM sales WHERE sale_date >= ? AND sale_date <= ? ORDER BY created_at DESC",
		from, to)
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id string, status domain.SaleStatus, reason *string, updatedAt string) error {
	result, err := r.ex.ExecContext(ctx, `
		UPDATE sales
		SET status = ?, return_reason = ?, updated_at = ?, is_synced = 0, pending_operation = 'update'
		WHERE id = ?
	`, string(status), reason, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update sale status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *saleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Sale, error) {
	rows, err := r.ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}
	return sales, nil
}

func (r *saleRepository) linesForSale(ctx context.Context, saleID string) ([]*domain.SaleItem, error) {
	rows, err := r.ex.QueryContext(ctx, `
		SELECT id, sale_id, item_id, item_name, quantity, unit_price, cost_price,
			line_total, profit_margin, created_at, is_synced
		FROM sale_items WHERE sale_id = ? ORDER BY created_at
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	lines := []*domain.SaleItem{}
	for rows.Next() {
		line := &domain.SaleItem{}
		var isSynced int
		err := rows.Scan(
			&line.ID,
			&line.SaleID,
			&line.ItemID,
			&line.ItemName,
			&line.Quantity,
			&line.UnitPrice,
			&line.CostPrice,
			&line.LineTotal,
			&line.ProfitMargin,
			&line.CreatedAt,
			&isSynced,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		line.IsSynced = isSynced == 1
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}
	return lines, nil
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	sale := &domain.Sale{}
	var (
		status        string
		paymentMethod string
		returnReason  sql.NullString
		isSynced      int
		pendingOp     sql.NullString
	)

	err := row.Scan(
		&sale.ID,
		&sale.SaleNumber,
		&status,
		&sale.Subtotal,
		&sale.AdditionalCharges,
		&sale.TotalAmount,
		&sale.ProfitAmount,
		&paymentMethod,
		&sale.CreatedBy,
		&sale.SaleDate,
		&sale.CreatedAt,
		&sale.UpdatedAt,
		&returnReason,
		&isSynced,
		&pendingOp,
	)
	if err != nil {
		return nil, err
	}

	sale.Status = domain.SaleStatus(status)
	sale.PaymentMethod = domain.PaymentMethod(paymentMethod)
	if returnReason.Valid {
		sale.ReturnReason = &returnReason.String
	}
	sale.IsSynced = isSynced == 1
	if pendingOp.Valid {
		sale.PendingOp = &pendingOp.String
	}
	return sale, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
