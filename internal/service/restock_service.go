package service

import (
	"context"

	"shop-manager/internal/domain"
	"shop-manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RestockInput is a supplier delivery to record.
type RestockInput struct {
	SupplierName string               `json:"supplier_name" validate:"required"`
	Notes        *string              `json:"notes"`
	Lines        []domain.RestockLine `json:"lines" validate:"required,min=1,dive"`
}

// AddRestock records a delivery and increments stock for every delivered
// line in one transaction. Unit costs are captured on the restock lines
// but item cost prices are left alone; repricing is an explicit audited
// update.
func (s *ShopService) AddRestock(ctx context.Context, sess *Session, input RestockInput) (*domain.Restock, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if input.SupplierName == "" {
		return nil, ErrSupplierRequired
	}
	if len(input.Lines) == 0 {
		return nil, ErrEmptyRestock
	}

	now := domain.NowISO()
	restock := &domain.Restock{
		ID:           uuid.New().String(),
		SupplierName: input.SupplierName,
		RestockDate:  now,
		Notes:        input.Notes,
		CreatedBy:    sess.UserID,
		CreatedAt:    now,
		PendingOp:    pendingOp(domain.OpCreate),
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var total float64
		lines := make([]*domain.RestockItem, 0, len(input.Lines))

		for _, in := range input.Lines {
			item, err := tx.Items.FindByID(ctx, in.ItemID)
			if err != nil {
				return err
			}
			lines = append(lines, &domain.RestockItem{
				ID:        uuid.New().String(),
				RestockID: restock.ID,
				ItemID:    item.ID,
				Quantity:  in.Quantity,
				UnitCost:  in.UnitCost,
				CreatedAt: now,
			})
			total += in.Quantity * in.UnitCost

			if err := applyItemUpdate(ctx, tx, item.ID, map[string]any{
				"quantity_in_stock": item.QuantityInStock + in.Quantity,
				"updated_at":        now,
			}); err != nil {
				return err
			}
		}

		restock.TotalAmount = total
		if err := tx.Restocks.Create(ctx, restock, lines); err != nil {
			return err
		}
		if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableRestocks, restock.ID, restock.Row()); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableRestockItems, line.ID, line.Row()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Restock recorded",
		zap.String("restock_id", restock.ID),
		zap.String("supplier", restock.SupplierName),
		zap.Float64("total_amount", restock.TotalAmount))
	s.syncer.TrySync()
	return restock, nil
}
