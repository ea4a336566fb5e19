package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop-manager/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrEntryNotFound = errors.New("sync queue entry not found")
)

// OutboxRepository is the durable record of intent: every local mutation
// that must eventually reach the remote store passes through here.
// Entries are never deduplicated; three updates to the same record are
// three entries, replayed in the order they were written.
type OutboxRepository interface {
	Enqueue(ctx context.Context, op domain.SyncOperation, table, recordID string, payload any) (*domain.SyncQueueEntry, error)
	// ListFIFO returns all entries in strict creation order. FIFO replay
	// is the core correctness property of the push phase.
	ListFIFO(ctx context.Context) ([]*domain.SyncQueueEntry, error)
	// Remove is called only after the remote has durably accepted the
	// corresponding operation.
	Remove(ctx context.Context, id string) error
	IncrementRetry(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// CountExhausted counts entries at or past the retry cutoff; they
	// stay queued but are skipped by the push phase.
	CountExhausted(ctx context.Context, maxRetries int) (int, error)
	// PendingRecordIDs returns the record ids of every queued entry for
	// a table. The pull phase refuses to overwrite these rows.
	PendingRecordIDs(ctx context.Context, table string) (map[string]bool, error)
}

type outboxRepository struct {
	ex Execer
}

func (r *outboxRepository) Enqueue(ctx context.Context, op domain.SyncOperation, table, recordID string, payload any) (*domain.SyncQueueEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	entry := &domain.SyncQueueEntry{
		ID:        "sq_" + uuid.New().String(),
		Operation: op,
		TableName: table,
		RecordID:  recordID,
		Data:      data,
		CreatedAt: domain.NowISO(),
	}

	_, err = r.ex.ExecContext(ctx, `
		INSERT INTO sync_queue (id, operation, table_name, record_id, data, created_at, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, entry.ID, string(entry.Operation), entry.TableName, entry.RecordID, string(entry.Data), entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue sync entry: %w", err)
	}
	return entry, nil
}

func (r *outboxRepository) ListFIFO(ctx context.Context) ([]*domain.SyncQueueEntry, error) {
	// rowid breaks ties between entries created in the same millisecond.
	rows, err := r.ex.QueryContext(ctx, `
		SELECT id, operation, table_name, record_id, data, created_at, retry_count
		FROM sync_queue ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync queue: %w", err)
	}
	defer rows.Close()

	entries := []*domain.SyncQueueEntry{}
	for rows.Next() {
		entry := &domain.SyncQueueEntry{}
		var (
			op   string
			data string
		)
		err := rows.Scan(&entry.ID, &op, &entry.TableName, &entry.RecordID, &data, &entry.CreatedAt, &entry.RetryCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync entry: %w", err)
		}
		entry.Operation = domain.SyncOperation(op)
		entry.Data = json.RawMessage(data)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync queue: %w", err)
	}
	return entries, nil
}

func (r *outboxRepository) Remove(ctx context.Context, id string) error {
	result, err := r.ex.ExecContext(ctx, "DELETE FROM sync_queue WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove sync entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *outboxRepository) IncrementRetry(ctx context.Context, id string) error {
	result, err := r.ex.ExecContext(ctx,
		"UPDATE sync_queue SET retry_count = retry_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *outboxRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.ex.QueryRowContext(ctx, "SELECT COUNT(*) FROM sync_queue").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return count, nil
}

func (r *outboxRepository) CountExhausted(ctx context.Context, maxRetries int) (int, error) {
	var count int
	err := r.ex.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sync_queue WHERE retry_count >= ?", maxRetries).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count exhausted sync entries: %w", err)
	}
	return count, nil
}

func (r *outboxRepository) PendingRecordIDs(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT DISTINCT record_id FROM sync_queue WHERE table_name = ?", table)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending record ids: %w", err)
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record ids: %w", err)
	}
	return ids, nil
}
