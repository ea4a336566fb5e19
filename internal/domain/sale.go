package domain

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SaleCanceled  SaleStatus = "canceled"
	SaleReturned  SaleStatus = "returned"
)

// PaymentMethod identifies how a sale or withdrawal was paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

// Sale is a completed checkout. Amounts are derived once at sale time:
// TotalAmount = Subtotal + AdditionalCharges, ProfitAmount = TotalAmount
// minus the cost basis of every line.
type Sale struct {
	ID                string        `json:"id" db:"id"`
	SaleNumber        string        `json:"sale_number" db:"sale_number"`
	Status            SaleStatus    `json:"status" db:"status"`
	Subtotal          float64       `json:"subtotal" db:"subtotal"`
	AdditionalCharges float64       `json:"additional_charges" db:"additional_charges"`
	TotalAmount       float64       `json:"total_amount" db:"total_amount"`
	ProfitAmount      float64       `json:"profit_amount" db:"profit_amount"`
	PaymentMethod     PaymentMethod `json:"payment_method" db:"payment_method"`
	CreatedBy         string        `json:"created_by" db:"created_by"`
	SaleDate          string        `json:"sale_date" db:"sale_date"`
	CreatedAt         string        `json:"created_at" db:"created_at"`
	UpdatedAt         string        `json:"updated_at" db:"updated_at"`
	ReturnReason      *string       `json:"return_reason" db:"return_reason"`
	IsSynced          bool          `json:"is_synced" db:"is_synced"`
	PendingOp         *string       `json:"pending_operation" db:"pending_operation"`
}

// SaleItem is a denormalized line entry. Item name, price and cost are
// snapshotted at sale time so later item edits never alter sales history.
type SaleItem struct {
	ID           string  `json:"id" db:"id"`
	SaleID       string  `json:"sale_id" db:"sale_id"`
	ItemID       string  `json:"item_id" db:"item_id"`
	ItemName     string  `json:"item_name" db:"item_name"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
	CostPrice    float64 `json:"cost_price" db:"cost_price"`
	LineTotal    float64 `json:"line_total" db:"line_total"`
	ProfitMargin float64 `json:"profit_margin" db:"profit_margin"`
	CreatedAt    string  `json:"created_at" db:"created_at"`
	IsSynced     bool    `json:"is_synced" db:"is_synced"`
}

// CartLine is one requested line of a sale before it is priced.
type CartLine struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}
