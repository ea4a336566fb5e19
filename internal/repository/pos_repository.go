package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-manager/internal/domain"
)

var (
	ErrFloatNotFound = errors.New("float not found")
)

type POSRepository interface {
	CreateFloat(ctx context.Context, f *domain.POSFloat) error
	// FindActiveFloat returns the active float for the given calendar day.
	FindActiveFloat(ctx context.Context, date string) (*domain.POSFloat, error)
	UpdateFloat(ctx context.Context, f *domain.POSFloat) error
	ListFloats(ctx context.Context) ([]*domain.POSFloat, error)
	CreateTransaction(ctx context.Context, tx *domain.POSTransaction) error
	ListTransactions(ctx context.Context) ([]*domain.POSTransaction, error)
	ListTransactionsByDay(ctx context.Context, day string) ([]*domain.POSTransaction, error)
}

type posRepository struct {
	ex Execer
}

func (r *posRepository) CreateFloat(ctx context.Context, f *domain.POSFloat) error {
	query := `
		INSERT INTO pos_floats (id, date, opening_balance, current_balance, closing_balance,
			total_withdrawals_processed, total_charges_earned, status, created_by,
			created_at, updated_at, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		f.ID,
		f.Date,
		f.OpeningBalance,
		f.CurrentBalance,
		f.ClosingBalance,
		f.TotalWithdrawalsProcessed,
		f.TotalChargesEarned,
		string(f.Status),
		f.CreatedBy,
		f.CreatedAt,
		f.UpdatedAt,
		boolToInt(f.IsSynced),
		f.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create float: %w", err)
	}
	return nil
}

const floatColumns = `id, date, opening_balance, current_balance, closing_balance,
	total_withdrawals_processed, total_charges_earned, status, created_by,
	created_at, updated_at, is_synced, pending_operation`

func (r *posRepository) FindActiveFloat(ctx context.Context, date string) (*domain.POSFloat, error) {
	row := r.ex.QueryRowContext(ctx,
		"SELECT "+floatColumns+" FROM pos_floats WHERE date = ? AND status = 'active'", date)

	f, err := scanFloat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFloatNotFound
		}
		return nil, fmt.Errorf("failed to find active float: %w", err)
	}
	return f, nil
}

func (r *posRepository) UpdateFloat(ctx context.Context, f *domain.POSFloat) error {
	result, err := r.ex.ExecContext(ctx, `
		UPDATE pos_floats
		SET current_balance = ?, closing_balance = ?, total_withdrawals_processed = ?,
			total_charges_earned = ?, status = ?, updated_at = ?,
			is_synced = 0, pending_operation = 'update'
		WHERE id = ?
	`,
		f.CurrentBalance,
		f.ClosingBalance,
		f.TotalWithdrawalsProcessed,
		f.TotalChargesEarned,
		string(f.Status),
		f.UpdatedAt,
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update float: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrFloatNotFound
	}
	return nil
}

func (r *posRepository) ListFloats(ctx context.Context) ([]*domain.POSFloat, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT "+floatColumns+" FROM pos_floats ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list floats: %w", err)
	}
	defer rows.Close()

	floats := []*domain.POSFloat{}
	for rows.Next() {
		f, err := scanFloat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan float: %w", err)
		}
		floats = append(floats, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating floats: %w", err)
	}
	return floats, nil
}

func (r *posRepository) CreateTransaction(ctx context.Context, tx *domain.POSTransaction) error {
	query := `
		INSERT INTO pos_transactions (id, float_id, transaction_number, customer_name,
			withdrawal_amount, service_charge, total_paid, payment_method, created_by,
			transaction_date, created_at, is_synced, pending_operation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ex.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.FloatID,
		tx.TransactionNumber,
		tx.CustomerName,
		tx.WithdrawalAmount,
		tx.ServiceCharge,
		tx.TotalPaid,
		string(tx.PaymentMethod),
		tx.CreatedBy,
		tx.TransactionDate,
		tx.CreatedAt,
		boolToInt(tx.IsSynced),
		tx.PendingOp,
	)
	if err != nil {
		return fmt.Errorf("failed to create pos transaction: %w", err)
	}
	return nil
}

const posTxColumns = `id, float_id, transaction_number, customer_name, withdrawal_amount,
	service_charge, total_paid, payment_method, created_by, transaction_date, created_at,
	is_synced, pending_operation`

func (r *posRepository) ListTransactions(ctx context.Context) ([]*domain.POSTransaction, error) {
	return r.listTransactions(ctx,
		"SELECT "+posTxColumns+" FROM pos_transactions ORDER BY created_at DESC")
}

func (r *posRepository) ListTransactionsByDay(ctx context.Context, day string) ([]*domain.POSTransaction, error) {
	return r.listTransactions(ctx,
		"SELECT "+posTxColumns+" FROM pos_transactions WHERE substr(transaction_date, 1, 10) = ? ORDER BY created_at DESC",
		day)
}

func (r *posRepository) listTransactions(ctx context.Context, query string, args ...any) ([]*domain.POSTransaction, error) {
	rows, err := r.ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pos transactions: %w", err)
	}
	defer rows.Close()

	txs := []*domain.POSTransaction{}
	for rows.Next() {
		tx := &domain.POSTransaction{}
		var (
			customerName  sql.NullString
			paymentMethod string
			isSynced      int
			pendingOp     sql.NullString
		)
		err := rows.Scan(
			&tx.ID,
			&tx.FloatID,
			&tx.TransactionNumber,
			&customerName,
			&tx.WithdrawalAmount,
			&tx.ServiceCharge,
			&tx.TotalPaid,
			&paymentMethod,
			&tx.CreatedBy,
			&tx.TransactionDate,
			&tx.CreatedAt,
			&isSynced,
			&pendingOp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pos transaction: %w", err)
		}
		if customerName.Valid {
			tx.CustomerName = &customerName.String
		}
		tx.PaymentMethod = domain.PaymentMethod(paymentMethod)
		tx.IsSynced = isSynced == 1
		if pendingOp.Valid {
			tx.PendingOp = &pendingOp.String
		}
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pos transactions: %w", err)
	}
	return txs, nil
}

func scanFloat(row rowScanner) (*domain.POSFloat, error) {
	f := &domain.POSFloat{}
	var (
		closingBalance sql.NullFloat64
		status         string
		isSynced       int
		pendingOp      sql.NullString
	)

	err := row.Scan(
		&f.ID,
		&f.Date,
		&f.OpeningBalance,
		&f.CurrentBalance,
		&closingBalance,
		&f.TotalWithdrawalsProcessed,
		&f.TotalChargesEarned,
		&status,
		&f.CreatedBy,
		&f.CreatedAt,
		&f.UpdatedAt,
		&isSynced,
		&pendingOp,
	)
	if err != nil {
		return nil, err
	}

	if closingBalance.Valid {
		f.ClosingBalance = &closingBalance.Float64
	}
	f.Status = domain.FloatStatus(status)
	f.IsSynced = isSynced == 1
	if pendingOp.Valid {
		f.PendingOp = &pendingOp.String
	}
	return f, nil
}
