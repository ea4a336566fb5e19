package domain

// Restock is a supplier delivery header.
type Restock struct {
	ID           string  `json:"id" db:"id"`
	SupplierName string  `json:"supplier_name" db:"supplier_name"`
	RestockDate  string  `json:"restock_date" db:"restock_date"`
	TotalAmount  float64 `json:"total_amount" db:"total_amount"`
	Notes        *string `json:"notes" db:"notes"`
	CreatedBy    string  `json:"created_by" db:"created_by"`
	CreatedAt    string  `json:"created_at" db:"created_at"`
	IsSynced     bool    `json:"is_synced" db:"is_synced"`
	PendingOp    *string `json:"pending_operation" db:"pending_operation"`
}

// RestockItem is one delivered line of a restock.
type RestockItem struct {
	ID        string  `json:"id" db:"id"`
	RestockID string  `json:"restock_id" db:"restock_id"`
	ItemID    string  `json:"item_id" db:"item_id"`
	Quantity  float64 `json:"quantity" db:"quantity"`
	UnitCost  float64 `json:"unit_cost" db:"unit_cost"`
	CreatedAt string  `json:"created_at" db:"created_at"`
	IsSynced  bool    `json:"is_synced" db:"is_synced"`
}

// RestockLine is an incoming delivery line before persistence.
type RestockLine struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}
