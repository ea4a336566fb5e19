package domain

// Table names shared by the local store, the outbox and the remote store.
const (
	TableItems           = "items"
	TableCategories      = "categories"
	TableSales           = "sales"
	TableSaleItems       = "sale_items"
	TablePOSFloats       = "pos_floats"
	TablePOSTransactions = "pos_transactions"
	TableInventoryLogs   = "inventory_logs"
	TableRestocks        = "restocks"
	TableRestockItems    = "restock_items"
	TableUsers           = "users"
)

// SyncTables lists every domain table the pull phase hydrates, parents
// before children so foreign keys resolve.
var SyncTables = []string{
	TableCategories,
	TableItems,
	TableSales,
	TableSaleItems,
	TablePOSFloats,
	TablePOSTransactions,
	TableInventoryLogs,
	TableRestocks,
	TableRestockItems,
	TableUsers,
}

// TableColumns is the per-table column contract shared by the pull upsert
// and the SQL remote store. is_synced and pending_operation are local-only
// bookkeeping and never cross the wire.
var TableColumns = map[string][]string{
	TableItems: {
		"id", "name", "sku", "category_id", "unit", "cost_price", "selling_price",
		"quantity_in_stock", "reorder_level", "allow_fractional", "created_at", "updated_at",
	},
	TableCategories: {
		"id", "name", "created_at",
	},
	TableSales: {
		"id", "sale_number", "status", "subtotal", "additional_charges", "total_amount",
		"profit_amount", "payment_method", "created_by", "sale_date", "created_at",
		"updated_at", "return_reason",
	},
	TableSaleItems: {
		"id", "sale_id", "item_id", "item_name", "quantity", "unit_price", "cost_price",
		"line_total", "profit_margin", "created_at",
	},
	TablePOSFloats: {
		"id", "date", "opening_balance", "current_balance", "closing_balance",
		"total_withdrawals_processed", "total_charges_earned", "status", "created_by",
		"created_at", "updated_at",
	},
	TablePOSTransactions: {
		"id", "float_id", "transaction_number", "customer_name", "withdrawal_amount",
		"service_charge", "total_paid", "payment_method", "created_by", "transaction_date",
		"created_at",
	},
	TableInventoryLogs: {
		"id", "item_id", "item_name", "user_id", "user_name", "change_type",
		"field_changed", "old_value", "new_value", "reason", "created_at",
	},
	TableRestocks: {
		"id", "supplier_name", "restock_date", "total_amount", "notes", "created_by",
		"created_at",
	},
	TableRestockItems: {
		"id", "restock_id", "item_id", "quantity", "unit_cost", "created_at",
	},
	TableUsers: {
		"id", "email", "full_name", "role", "created_at",
	},
}

// tablesWithoutPendingOp have an is_synced flag but no pending_operation
// column (their rows never queue standalone updates or deletes).
var tablesWithoutPendingOp = map[string]bool{
	TableSaleItems:    true,
	TableRestockItems: true,
	TableUsers:        true,
}

// HasPendingOpColumn reports whether a table carries pending_operation.
func HasPendingOpColumn(table string) bool {
	return !tablesWithoutPendingOp[table]
}

// KnownTable reports whether the table name is part of the sync contract.
func KnownTable(table string) bool {
	_, ok := TableColumns[table]
	return ok
}
