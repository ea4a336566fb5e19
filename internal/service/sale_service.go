package service

import (
	"context"
	"errors"
	"math"

	"shop-manager/internal/domain"
	"shop-manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleInput is a checkout request.
type SaleInput struct {
	Lines             []domain.CartLine    `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod     domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash bank_transfer card"`
	AdditionalCharges float64              `json:"additional_charges" validate:"gte=0"`
}

// AddSale prices the cart against current item data, decrements stock and
// writes the sale with its lines in one transaction. Every touched row
// gets an outbox entry inside that same transaction. A duplicate sale
// number aborts the whole transaction and is retried once with a fresh
// number.
func (s *ShopService) AddSale(ctx context.Context, sess *Session, input SaleInput) (*domain.Sale, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentCash
	}

	sale, err := s.createSale(ctx, sess, input, GenerateSaleNumber())
	if errors.Is(err, repository.ErrDuplicateSaleNumber) {
		s.log.Warn("Sale number collision, regenerating", zap.String("user_id", sess.UserID))
		sale, err = s.createSale(ctx, sess, input, GenerateSaleNumber())
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("sale_number", sale.SaleNumber),
		zap.Float64("total_amount", sale.TotalAmount))
	s.syncer.TrySync()
	return sale, nil
}

func (s *ShopService) createSale(ctx context.Context, sess *Session, input SaleInput, saleNumber string) (*domain.Sale, error) {
	now := domain.NowISO()
	sale := &domain.Sale{
		ID:                uuid.New().String(),
		SaleNumber:        saleNumber,
		Status:            domain.SaleCompleted,
		AdditionalCharges: input.AdditionalCharges,
		PaymentMethod:     input.PaymentMethod,
		CreatedBy:         sess.UserID,
		SaleDate:          now,
		CreatedAt:         now,
		UpdatedAt:         now,
		PendingOp:         pendingOp(domain.OpCreate),
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var subtotal, costBasis float64
		lines := make([]*domain.SaleItem, 0, len(input.Lines))

		for _, cart := range input.Lines {
			item, err := tx.Items.FindByID(ctx, cart.ItemID)
			if err != nil {
				return err
			}
			if !item.AllowFractional && cart.Quantity != math.Trunc(cart.Quantity) {
				return ErrFractionalNotAllowed
			}
			newStock := item.QuantityInStock - cart.Quantity
			if newStock < 0 {
				return ErrInsufficientStock
			}

			lineTotal := item.SellingPrice * cart.Quantity
			margin := 0.0
			if item.SellingPrice > 0 {
				margin = ((item.SellingPrice - item.CostPrice) / item.SellingPrice) * 100
			}
			lines = append(lines, &domain.SaleItem{
				ID:           uuid.New().String(),
				SaleID:       sale.ID,
				ItemID:       item.ID,
				ItemName:     item.Name,
				Quantity:     cart.Quantity,
				UnitPrice:    item.SellingPrice,
				CostPrice:    item.CostPrice,
				LineTotal:    lineTotal,
				ProfitMargin: margin,
				CreatedAt:    now,
			})
			subtotal += lineTotal
			costBasis += item.CostPrice * cart.Quantity

			if err := applyItemUpdate(ctx, tx, item.ID, map[string]any{
				"quantity_in_stock": newStock,
				"updated_at":        now,
			}); err != nil {
				return err
			}
		}

		sale.Subtotal = subtotal
		sale.TotalAmount = subtotal + sale.AdditionalCharges
		sale.ProfitAmount = sale.TotalAmount - costBasis

		if err := tx.Sales.Create(ctx, sale, lines); err != nil {
			return err
		}
		if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableSales, sale.ID, sale.Row()); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableSaleItems, line.ID, line.Row()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReturnSale flips a completed sale to returned. Stock is not restored
// automatically; a deliberate restock or audited adjustment handles that.
func (s *ShopService) ReturnSale(ctx context.Context, sess *Session, id, reason string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		sale, _, err := tx.Sales.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status != domain.SaleCompleted {
			return ErrSaleNotReturnable
		}

		now := domain.NowISO()
		if err := tx.Sales.UpdateStatus(ctx, id, domain.SaleReturned, &reason, now); err != nil {
			return err
		}
		_, err = tx.Outbox.Enqueue(ctx, domain.OpUpdate, domain.TableSales, id, map[string]any{
			"status":        domain.SaleReturned,
			"return_reason": reason,
			"updated_at":    now,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.syncer.TrySync()
	return nil
}
