package domain

// Item is a sellable stock item. IDs are generated on the client and stay
// stable across sync, so they are stored as TEXT rather than a native UUID
// column type.
type Item struct {
	ID              string  `json:"id" db:"id"`
	Name            string  `json:"name" db:"name"`
	SKU             string  `json:"sku" db:"sku"`
	CategoryID      *string `json:"category_id" db:"category_id"`
	Unit            string  `json:"unit" db:"unit"`
	CostPrice       float64 `json:"cost_price" db:"cost_price"`
	SellingPrice    float64 `json:"selling_price" db:"selling_price"`
	QuantityInStock float64 `json:"quantity_in_stock" db:"quantity_in_stock"`
	ReorderLevel    float64 `json:"reorder_level" db:"reorder_level"`
	AllowFractional bool    `json:"allow_fractional" db:"allow_fractional"`
	CreatedAt       string  `json:"created_at" db:"created_at"`
	UpdatedAt       string  `json:"updated_at" db:"updated_at"`
	IsSynced        bool    `json:"is_synced" db:"is_synced"`
	PendingOp       *string `json:"pending_operation" db:"pending_operation"`
}

// Category groups items. The reference from Item is weak: deleting a
// category does not cascade.
type Category struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	CreatedAt string  `json:"created_at" db:"created_at"`
	IsSynced  bool    `json:"is_synced" db:"is_synced"`
	PendingOp *string `json:"pending_operation" db:"pending_operation"`
}
