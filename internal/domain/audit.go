package domain

// ChangeType classifies an inventory audit entry.
type ChangeType string

const (
	ChangeUpdate     ChangeType = "update"
	ChangeCreate     ChangeType = "create"
	ChangeDelete     ChangeType = "delete"
	ChangeAdjustment ChangeType = "adjustment"
)

// InventoryLog is an immutable audit record of a sensitive item field change.
// Old and new values are captured as strings regardless of the field type.
// Rows are only ever appended, never updated or deleted.
type InventoryLog struct {
	ID           string     `json:"id" db:"id"`
	ItemID       string     `json:"item_id" db:"item_id"`
	ItemName     string     `json:"item_name" db:"item_name"`
	UserID       string     `json:"user_id" db:"user_id"`
	UserName     string     `json:"user_name" db:"user_name"`
	ChangeType   ChangeType `json:"change_type" db:"change_type"`
	FieldChanged string     `json:"field_changed" db:"field_changed"`
	OldValue     string     `json:"old_value" db:"old_value"`
	NewValue     string     `json:"new_value" db:"new_value"`
	Reason       string     `json:"reason" db:"reason"`
	CreatedAt    string     `json:"created_at" db:"created_at"`
	IsSynced     bool       `json:"is_synced" db:"is_synced"`
	PendingOp    *string    `json:"pending_operation" db:"pending_operation"`
}
