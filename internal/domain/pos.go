package domain

// FloatStatus is the lifecycle state of a cash-drawer float.
type FloatStatus string

const (
	FloatActive FloatStatus = "active"
	FloatClosed FloatStatus = "closed"
)

// POSFloat is a cash-drawer session, one per day per operator. The current
// balance only ever decreases: every withdrawal consumes it.
type POSFloat struct {
	ID                        string      `json:"id" db:"id"`
	Date                      string      `json:"date" db:"date"`
	OpeningBalance            float64     `json:"opening_balance" db:"opening_balance"`
	CurrentBalance            float64     `json:"current_balance" db:"current_balance"`
	ClosingBalance            *float64    `json:"closing_balance" db:"closing_balance"`
	TotalWithdrawalsProcessed float64     `json:"total_withdrawals_processed" db:"total_withdrawals_processed"`
	TotalChargesEarned        float64     `json:"total_charges_earned" db:"total_charges_earned"`
	Status                    FloatStatus `json:"status" db:"status"`
	CreatedBy                 string      `json:"created_by" db:"created_by"`
	CreatedAt                 string      `json:"created_at" db:"created_at"`
	UpdatedAt                 string      `json:"updated_at" db:"updated_at"`
	IsSynced                  bool        `json:"is_synced" db:"is_synced"`
	PendingOp                 *string     `json:"pending_operation" db:"pending_operation"`
}

// POSTransaction is a single cash withdrawal against a float.
// TotalPaid = WithdrawalAmount + ServiceCharge.
type POSTransaction struct {
	ID                string        `json:"id" db:"id"`
	FloatID           string        `json:"float_id" db:"float_id"`
	TransactionNumber string        `json:"transaction_number" db:"transaction_number"`
	CustomerName      *string       `json:"customer_name" db:"customer_name"`
	WithdrawalAmount  float64       `json:"withdrawal_amount" db:"withdrawal_amount"`
	ServiceCharge     float64       `json:"service_charge" db:"service_charge"`
	TotalPaid         float64       `json:"total_paid" db:"total_paid"`
	PaymentMethod     PaymentMethod `json:"payment_method" db:"payment_method"`
	CreatedBy         string        `json:"created_by" db:"created_by"`
	TransactionDate   string        `json:"transaction_date" db:"transaction_date"`
	CreatedAt         string        `json:"created_at" db:"created_at"`
	IsSynced          bool          `json:"is_synced" db:"is_synced"`
	PendingOp         *string       `json:"pending_operation" db:"pending_operation"`
}

// ChargeTier maps a withdrawal amount bracket to a flat service fee.
type ChargeTier struct {
	Min    float64
	Max    float64
	Charge float64
}
