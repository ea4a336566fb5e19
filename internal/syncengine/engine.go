// Package syncengine reconciles the local store with the remote system of
// record: it drains the outbox (push), hydrates local tables from the
// remote row sets (pull) and reports an observable status to the UI.
package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shop-manager/internal/connectivity"
	"shop-manager/internal/domain"
	"shop-manager/internal/remote"
	"shop-manager/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrOffline marks a sync attempt that stopped before any network
// operation because the connectivity oracle reported offline.
var ErrOffline = errors.New("offline")

type Config struct {
	// CallTimeout bounds every individual remote call.
	CallTimeout time.Duration
	// MaxRetries is the push cutoff: entries at or past it stay queued
	// but are skipped and surfaced as dead letters.
	MaxRetries int
}

func DefaultConfig() Config {
	return Config{
		CallTimeout: 15 * time.Second,
		MaxRetries:  10,
	}
}

type Engine struct {
	store   *repository.Store
	remote  remote.Store
	checker connectivity.Checker
	log     *zap.Logger
	cfg     Config

	// syncing coalesces triggers: a second Sync while one pass is
	// running returns immediately instead of queueing another pass.
	syncing atomic.Bool

	mu        sync.Mutex
	snapshot  domain.SyncSnapshot
	observers []func(domain.SyncSnapshot)
}

func New(store *repository.Store, remoteStore remote.Store, checker connectivity.Checker, log *zap.Logger, cfg Config) *Engine {
	return &Engine{
		store:   store,
		remote:  remoteStore,
		checker: checker,
		log:     log,
		cfg:     cfg,
		snapshot: domain.SyncSnapshot{
			Status: domain.StatusSynced,
		},
	}
}

// OnStatusChange registers a status observer. Observers are invoked on
// every transition, on the goroutine running the sync pass.
func (e *Engine) OnStatusChange(fn func(domain.SyncSnapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Snapshot returns the last published status.
func (e *Engine) Snapshot() domain.SyncSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Refresh recomputes the idle status from the outbox and connectivity
// without touching the network beyond the connectivity probe. Used at
// startup and after local mutations.
func (e *Engine) Refresh(ctx context.Context) {
	if e.syncing.Load() {
		return
	}

	status := domain.StatusSynced
	if !e.checker.Online(ctx) {
		status = domain.StatusOffline
	}
	if count, err := e.store.Outbox.Count(ctx); err == nil && count > 0 {
		status = domain.StatusPending
	}
	e.publish(ctx, status, "")
}

// Sync runs one full push-then-pull pass. Push failures are per-entry and
// never abort the pass; a pull failure reports error status and leaves
// last_sync_time untouched. Returns ErrOffline when no connectivity.
func (e *Engine) Sync(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	if !e.checker.Online(ctx) {
		e.publish(ctx, domain.StatusOffline, "")
		return ErrOffline
	}

	e.publish(ctx, domain.StatusSyncing, "")
	start := time.Now()

	e.push(ctx)

	if err := e.pull(ctx); err != nil {
		e.log.Error("Sync pass failed during pull", zap.Error(err))
		e.publish(ctx, domain.StatusError, err.Error())
		return err
	}

	if err := e.store.Metadata.Set(ctx, domain.MetaLastSyncTime, domain.NowISO()); err != nil {
		e.log.Error("Failed to stamp last sync time", zap.Error(err))
		e.publish(ctx, domain.StatusError, err.Error())
		return err
	}

	e.log.Info("Sync pass completed", zap.Duration("duration", time.Since(start)))

	// Entries enqueued while this pass ran leave us pending, not synced.
	status := domain.StatusSynced
	if count, err := e.store.Outbox.Count(ctx); err == nil && count > 0 {
		status = domain.StatusPending
	}
	e.publish(ctx, status, "")
	return nil
}

// TrySync runs Sync on a fresh goroutine and only logs the outcome.
// Domain mutations use it for the opportunistic post-write sync: their
// success never depends on remote reachability.
func (e *Engine) TrySync() {
	go func() {
		if err := e.Sync(context.Background()); err != nil && !errors.Is(err, ErrOffline) {
			e.log.Warn("Opportunistic sync failed", zap.Error(err))
		}
	}()
}

// SyncWithBackoff retries a full pass with exponential jittered backoff.
// Used on connectivity regain, where the first attempts may race the
// network actually settling.
func (e *Engine) SyncWithBackoff(ctx context.Context) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	return backoff.Retry(func() error {
		err := e.Sync(ctx)
		if errors.Is(err, ErrOffline) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// push drains the outbox in FIFO order. Replaying creates, updates and
// deletes in their original order is what keeps the remote converging.
func (e *Engine) push(ctx context.Context) {
	entries, err := e.store.Outbox.ListFIFO(ctx)
	if err != nil {
		e.log.Error("Failed to read sync queue", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.RetryCount >= e.cfg.MaxRetries {
			e.log.Warn("Skipping exhausted sync entry",
				zap.String("entry_id", entry.ID),
				zap.String("table", entry.TableName),
				zap.Int("retry_count", entry.RetryCount),
			)
			continue
		}

		if err := e.dispatch(ctx, entry); err != nil {
			e.log.Warn("Push failed for sync entry",
				zap.String("entry_id", entry.ID),
				zap.String("table", entry.TableName),
				zap.String("operation", string(entry.Operation)),
				zap.Error(err),
			)
			if err := e.store.Outbox.IncrementRetry(ctx, entry.ID); err != nil {
				e.log.Error("Failed to increment retry count", zap.Error(err))
			}
			continue
		}

		if err := e.store.Outbox.Remove(ctx, entry.ID); err != nil {
			e.log.Error("Failed to remove pushed sync entry", zap.Error(err))
			continue
		}
		if entry.Operation != domain.OpDelete {
			// Leave the row flagged while later queued entries still
			// reference it; the last entry to drain marks it synced.
			pending, err := e.store.Outbox.PendingRecordIDs(ctx, entry.TableName)
			if err != nil {
				e.log.Error("Failed to read pending record ids", zap.Error(err))
				continue
			}
			if pending[entry.RecordID] {
				continue
			}
			if err := e.store.MarkSynced(ctx, entry.TableName, entry.RecordID); err != nil {
				e.log.Error("Failed to mark row synced", zap.Error(err))
			}
		}
	}
}

// dispatch replays one outbox entry against the remote store.
func (e *Engine) dispatch(ctx context.Context, entry *domain.SyncQueueEntry) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	switch entry.Operation {
	case domain.OpCreate, domain.OpUpdate:
		var row map[string]any
		if err := json.Unmarshal(entry.Data, &row); err != nil {
			return fmt.Errorf("failed to decode entry payload: %w", err)
		}
		if entry.Operation == domain.OpCreate {
			return e.remote.Insert(callCtx, entry.TableName, row)
		}
		return e.remote.Update(callCtx, entry.TableName, entry.RecordID, row)
	case domain.OpDelete:
		return e.remote.Delete(callCtx, entry.TableName, entry.RecordID)
	default:
		return fmt.Errorf("unknown sync operation: %s", entry.Operation)
	}
}

// pull overwrites local rows with the remote row sets. A failing table is
// logged and does not stop the remaining tables, but any failure makes
// the pass report error and skip the last_sync_time stamp. Rows that
// still have a pending outbox entry are never overwritten.
func (e *Engine) pull(ctx context.Context) error {
	var errs []error
	for _, table := range domain.SyncTables {
		if err := e.pullTable(ctx, table); err != nil {
			e.log.Error("Pull failed for table", zap.String("table", table), zap.Error(err))
			errs = append(errs, fmt.Errorf("pull %s: %w", table, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) pullTable(ctx context.Context, table string) error {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	rows, err := e.remote.SelectAll(callCtx, table)
	cancel()
	if err != nil {
		return err
	}

	pending, err := e.store.Outbox.PendingRecordIDs(ctx, table)
	if err != nil {
		return err
	}

	for _, row := range rows {
		id, ok := row["id"].(string)
		if !ok {
			e.log.Warn("Pulled row without string id", zap.String("table", table))
			continue
		}
		if pending[id] {
			// A local edit is still queued for this row; pulling now
			// would silently revert it.
			continue
		}
		if err := e.store.UpsertFromRemote(ctx, table, row); err != nil {
			return err
		}
	}
	return nil
}

// publish recomputes the observable snapshot and notifies observers when
// anything changed.
func (e *Engine) publish(ctx context.Context, status domain.SyncStatus, lastError string) {
	snapshot := domain.SyncSnapshot{
		Status:    status,
		LastError: lastError,
	}

	if count, err := e.store.Outbox.Count(ctx); err == nil {
		snapshot.PendingCount = count
	}
	if count, err := e.store.Outbox.CountExhausted(ctx, e.cfg.MaxRetries); err == nil {
		snapshot.DeadLetterCount = count
	}
	if last, err := e.store.Metadata.Get(ctx, domain.MetaLastSyncTime); err == nil && last != "" {
		snapshot.LastSyncTime = &last
	}

	e.mu.Lock()
	prev := e.snapshot
	e.snapshot = snapshot
	observers := make([]func(domain.SyncSnapshot), len(e.observers))
	copy(observers, e.observers)
	e.mu.Unlock()

	if sameSnapshot(prev, snapshot) {
		return
	}
	for _, fn := range observers {
		fn(snapshot)
	}
}

func sameSnapshot(a, b domain.SyncSnapshot) bool {
	if a.Status != b.Status || a.PendingCount != b.PendingCount ||
		a.DeadLetterCount != b.DeadLetterCount || a.LastError != b.LastError {
		return false
	}
	switch {
	case a.LastSyncTime == nil && b.LastSyncTime == nil:
		return true
	case a.LastSyncTime == nil || b.LastSyncTime == nil:
		return false
	default:
		return *a.LastSyncTime == *b.LastSyncTime
	}
}
