package service

import (
	"context"
	"errors"

	"shop-manager/internal/domain"
	"shop-manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartFloat opens the cash drawer for today. At most one active float
// exists per day; a second open attempt is rejected.
func (s *ShopService) StartFloat(ctx context.Context, sess *Session, openingBalance float64) (*domain.POSFloat, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if openingBalance <= 0 {
		return nil, ErrInvalidOpeningBalance
	}

	now := domain.NowISO()
	f := &domain.POSFloat{
		ID:             uuid.New().String(),
		Date:           domain.Today(),
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		Status:         domain.FloatActive,
		CreatedBy:      sess.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
		PendingOp:      pendingOp(domain.OpCreate),
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		_, err := tx.POS.FindActiveFloat(ctx, f.Date)
		if err == nil {
			return ErrFloatAlreadyActive
		}
		if !errors.Is(err, repository.ErrFloatNotFound) {
			return err
		}
		if err := tx.POS.CreateFloat(ctx, f); err != nil {
			return err
		}
		_, err = tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TablePOSFloats, f.ID, f.Row())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Float opened",
		zap.String("float_id", f.ID),
		zap.Float64("opening_balance", f.OpeningBalance))
	s.syncer.TrySync()
	return f, nil
}

// WithdrawalInput is a cash withdrawal request against today's float.
type WithdrawalInput struct {
	CustomerName  *string              `json:"customer_name"`
	Amount        float64              `json:"amount" validate:"required,gt=0"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash bank_transfer card"`
}

// AddWithdrawal records a withdrawal, applies the tiered service charge
// and debits the active float, all in one transaction. Only the withdrawn
// amount leaves the drawer; the charge is what the customer pays on top.
func (s *ShopService) AddWithdrawal(ctx context.Context, sess *Session, input WithdrawalInput) (*domain.POSTransaction, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidWithdrawal
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentCash
	}

	now := domain.NowISO()
	charge := ServiceChargeFor(s.tiers, input.Amount)
	txn := &domain.POSTransaction{
		ID:                uuid.New().String(),
		TransactionNumber: GenerateTransactionNumber(),
		CustomerName:      input.CustomerName,
		WithdrawalAmount:  input.Amount,
		ServiceCharge:     charge,
		TotalPaid:         input.Amount + charge,
		PaymentMethod:     input.PaymentMethod,
		CreatedBy:         sess.UserID,
		TransactionDate:   now,
		CreatedAt:         now,
		PendingOp:         pendingOp(domain.OpCreate),
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		f, err := tx.POS.FindActiveFloat(ctx, domain.Today())
		if errors.Is(err, repository.ErrFloatNotFound) {
			return ErrNoActiveFloat
		}
		if err != nil {
			return err
		}
		if input.Amount > f.CurrentBalance {
			return ErrFloatBalanceExceeded
		}

		txn.FloatID = f.ID
		if err := tx.POS.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TablePOSTransactions, txn.ID, txn.Row()); err != nil {
			return err
		}

		f.CurrentBalance -= input.Amount
		f.TotalWithdrawalsProcessed += input.Amount
		f.TotalChargesEarned += charge
		f.UpdatedAt = now
		if err := tx.POS.UpdateFloat(ctx, f); err != nil {
			return err
		}
		_, err = tx.Outbox.Enqueue(ctx, domain.OpUpdate, domain.TablePOSFloats, f.ID, map[string]any{
			"current_balance":             f.CurrentBalance,
			"total_withdrawals_processed": f.TotalWithdrawalsProcessed,
			"total_charges_earned":        f.TotalChargesEarned,
			"updated_at":                  f.UpdatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Withdrawal processed",
		zap.String("transaction_number", txn.TransactionNumber),
		zap.Float64("amount", txn.WithdrawalAmount),
		zap.Float64("service_charge", txn.ServiceCharge))
	s.syncer.TrySync()
	return txn, nil
}

// CloseFloat ends today's drawer session, freezing the closing balance.
func (s *ShopService) CloseFloat(ctx context.Context, sess *Session) (*domain.POSFloat, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	var closed *domain.POSFloat
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		f, err := tx.POS.FindActiveFloat(ctx, domain.Today())
		if errors.Is(err, repository.ErrFloatNotFound) {
			return ErrNoActiveFloat
		}
		if err != nil {
			return err
		}

		balance := f.CurrentBalance
		f.ClosingBalance = &balance
		f.Status = domain.FloatClosed
		f.UpdatedAt = domain.NowISO()
		if err := tx.POS.UpdateFloat(ctx, f); err != nil {
			return err
		}
		if _, err := tx.Outbox.Enqueue(ctx, domain.OpUpdate, domain.TablePOSFloats, f.ID, map[string]any{
			"closing_balance": *f.ClosingBalance,
			"status":          f.Status,
			"updated_at":      f.UpdatedAt,
		}); err != nil {
			return err
		}
		closed = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Float closed",
		zap.String("float_id", closed.ID),
		zap.Float64("closing_balance", *closed.ClosingBalance))
	s.syncer.TrySync()
	return closed, nil
}
