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
	ErrUnknownTable = errors.New("unknown table")
)

// Execer is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting every repository run either standalone or inside a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles every repository over a single connection or transaction.
// It exclusively owns all entity rows in the local database.
type Store struct {
	db *sql.DB

	Items         ItemRepository
	Categories    CategoryRepository
	Sales         SaleRepository
	POS           POSRepository
	InventoryLogs InventoryLogRepository
	Restocks      RestockRepository
	Users         UserRepository
	Outbox        OutboxRepository
	Metadata      MetadataRepository

	ex Execer
}

// NewStore creates a Store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, ex Execer) *Store {
	return &Store{
		db:            db,
		Items:         &itemRepository{ex: ex},
		Categories:    &categoryRepository{ex: ex},
		Sales:         &saleRepository{ex: ex},
		POS:           &posRepository{ex: ex},
		InventoryLogs: &inventoryLogRepository{ex: ex},
		Restocks:      &restockRepository{ex: ex},
		Users:         &userRepository{ex: ex},
		Outbox:        &outboxRepository{ex: ex},
		Metadata:      &metadataRepository{ex: ex},
		ex:            ex,
	}
}

// InTx runs fn with a transaction-scoped Store. A domain mutation and its
// outbox entries always go through here so they commit as one unit.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return errors.New("nested transaction")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newStore(nil, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkSynced flips a row to the fully reconciled state after the remote
// store accepted its outstanding operation.
func (s *Store) MarkSynced(ctx context.Context, table, id string) error {
	if !domain.KnownTable(table) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	query := fmt.Sprintf("UPDATE %s SET is_synced = 1 WHERE id = ?", table)
	if domain.HasPendingOpColumn(table) {
		query = fmt.Sprintf("UPDATE %s SET is_synced = 1, pending_operation = NULL WHERE id = ?", table)
	}

	if _, err := s.ex.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark %s/%s synced: %w", table, id, err)
	}
	return nil
}

// UpsertFromRemote overwrites a local row with the authoritative remote
// copy, forcing it into the synced state. Columns outside the table
// contract are dropped.
func (s *Store) UpsertFromRemote(ctx context.Context, table string, row map[string]any) error {
	cols, ok := domain.TableColumns[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, normalizeValue(row[col]))
	}
	args = append(args, 1) // is_synced

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, is_synced) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders,
	)

	if _, err := s.ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert pulled %s row: %w", table, err)
	}
	return nil
}

// ClearAll wipes every domain and sync table but leaves the schema intact
// for the next session. Children go before parents.
func (s *Store) ClearAll(ctx context.Context) error {
	tables := []string{
		domain.TableSaleItems,
		domain.TableSales,
		domain.TablePOSTransactions,
		domain.TablePOSFloats,
		domain.TableRestockItems,
		domain.TableRestocks,
		domain.TableInventoryLogs,
		domain.TableItems,
		domain.TableCategories,
		domain.TableUsers,
		"sync_queue",
		"app_metadata",
	}

	return s.InTx(ctx, func(tx *Store) error {
		for _, table := range tables {
			if _, err := tx.ex.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// normalizeValue maps JSON-decoded values onto SQLite bind types.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return v
	}
}
