package domain

// Row builders produce the wire representation of an entity: the column
// map enqueued into the outbox and replayed against the remote store.
// Local-only bookkeeping (is_synced, pending_operation) never appears here.

func (i *Item) Row() map[string]any {
	return map[string]any{
		"id":                i.ID,
		"name":              i.Name,
		"sku":               i.SKU,
		"category_id":       i.CategoryID,
		"unit":              i.Unit,
		"cost_price":        i.CostPrice,
		"selling_price":     i.SellingPrice,
		"quantity_in_stock": i.QuantityInStock,
		"reorder_level":     i.ReorderLevel,
		"allow_fractional":  i.AllowFractional,
		"created_at":        i.CreatedAt,
		"updated_at":        i.UpdatedAt,
	}
}

func (c *Category) Row() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"created_at": c.CreatedAt,
	}
}

func (s *Sale) Row() map[string]any {
	return map[string]any{
		"id":                 s.ID,
		"sale_number":        s.SaleNumber,
		"status":             s.Status,
		"subtotal":           s.Subtotal,
		"additional_charges": s.AdditionalCharges,
		"total_amount":       s.TotalAmount,
		"profit_amount":      s.ProfitAmount,
		"payment_method":     s.PaymentMethod,
		"created_by":         s.CreatedBy,
		"sale_date":          s.SaleDate,
		"created_at":         s.CreatedAt,
		"updated_at":         s.UpdatedAt,
		"return_reason":      s.ReturnReason,
	}
}

func (si *SaleItem) Row() map[string]any {
	return map[string]any{
		"id":            si.ID,
		"sale_id":       si.SaleID,
		"item_id":       si.ItemID,
		"item_name":     si.ItemName,
		"quantity":      si.Quantity,
		"unit_price":    si.UnitPrice,
		"cost_price":    si.CostPrice,
		"line_total":    si.LineTotal,
		"profit_margin": si.ProfitMargin,
		"created_at":    si.CreatedAt,
	}
}

func (f *POSFloat) Row() map[string]any {
	return map[string]any{
		"id":                          f.ID,
		"date":                        f.Date,
		"opening_balance":             f.OpeningBalance,
		"current_balance":             f.CurrentBalance,
		"closing_balance":             f.ClosingBalance,
		"total_withdrawals_processed": f.TotalWithdrawalsProcessed,
		"total_charges_earned":        f.TotalChargesEarned,
		"status":                      f.Status,
		"created_by":                  f.CreatedBy,
		"created_at":                  f.CreatedAt,
		"updated_at":                  f.UpdatedAt,
	}
}

func (t *POSTransaction) Row() map[string]any {
	return map[string]any{
		"id":                 t.ID,
		"float_id":           t.FloatID,
		"transaction_number": t.TransactionNumber,
		"customer_name":      t.CustomerName,
		"withdrawal_amount":  t.WithdrawalAmount,
		"service_charge":     t.ServiceCharge,
		"total_paid":         t.TotalPaid,
		"payment_method":     t.PaymentMethod,
		"created_by":         t.CreatedBy,
		"transaction_date":   t.TransactionDate,
		"created_at":         t.CreatedAt,
	}
}

func (l *InventoryLog) Row() map[string]any {
	return map[string]any{
		"id":            l.ID,
		"item_id":       l.ItemID,
		"item_name":     l.ItemName,
		"user_id":       l.UserID,
		"user_name":     l.UserName,
		"change_type":   l.ChangeType,
		"field_changed": l.FieldChanged,
		"old_value":     l.OldValue,
		"new_value":     l.NewValue,
		"reason":        l.Reason,
		"created_at":    l.CreatedAt,
	}
}

func (r *Restock) Row() map[string]any {
	return map[string]any{
		"id":            r.ID,
		"supplier_name": r.SupplierName,
		"restock_date":  r.RestockDate,
		"total_amount":  r.TotalAmount,
		"notes":         r.Notes,
		"created_by":    r.CreatedBy,
		"created_at":    r.CreatedAt,
	}
}

func (ri *RestockItem) Row() map[string]any {
	return map[string]any{
		"id":         ri.ID,
		"restock_id": ri.RestockID,
		"item_id":    ri.ItemID,
		"quantity":   ri.Quantity,
		"unit_cost":  ri.UnitCost,
		"created_at": ri.CreatedAt,
	}
}
