package domain

import (
	"encoding/json"
	"time"
)

// SyncOperation is the kind of mutation an outbox entry replays remotely.
type SyncOperation string

const (
	OpCreate SyncOperation = "create"
	OpUpdate SyncOperation = "update"
	OpDelete SyncOperation = "delete"
)

// SyncQueueEntry is one pending mutation in the outbox. Entries are
// replayed strictly in creation order and removed only after the remote
// store has durably accepted them.
type SyncQueueEntry struct {
	ID         string          `json:"id" db:"id"`
	Operation  SyncOperation   `json:"operation" db:"operation"`
	TableName  string          `json:"table_name" db:"table_name"`
	RecordID   string          `json:"record_id" db:"record_id"`
	Data       json.RawMessage `json:"data" db:"data"`
	CreatedAt  string          `json:"created_at" db:"created_at"`
	RetryCount int             `json:"retry_count" db:"retry_count"`
}

// SyncStatus is the observable state of the sync engine.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusSyncing SyncStatus = "syncing"
	StatusPending SyncStatus = "pending"
	StatusOffline SyncStatus = "offline"
	StatusError   SyncStatus = "error"
)

// SyncSnapshot is the status surface exposed to the UI.
type SyncSnapshot struct {
	Status          SyncStatus `json:"status"`
	PendingCount    int        `json:"pending_sync_count"`
	DeadLetterCount int        `json:"dead_letter_count"`
	LastSyncTime    *string    `json:"last_sync_time"`
	LastError       string     `json:"last_error,omitempty"`
}

// MetaLastSyncTime is the app_metadata key stamped after a fully
// successful sync pass.
const MetaLastSyncTime = "last_sync_time"

// isoMillis is fixed-width down to milliseconds so timestamps stay
// lexicographically ordered, matching how the rest of the system compares
// them for date filtering and outbox FIFO.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NowISO returns the current UTC time as a fixed-width ISO-8601 string.
func NowISO() string {
	return time.Now().UTC().Format(isoMillis)
}

// Today returns the current UTC calendar day (YYYY-MM-DD).
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// DayOf extracts the calendar day from an ISO-8601 timestamp.
func DayOf(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	return iso[:10]
}
