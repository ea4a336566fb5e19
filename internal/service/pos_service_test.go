package service

import (
	"context"
	"errors"
	"testing"
)

func TestFloatLifecycle(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	f, err := svc.StartFloat(ctx, testSession(), 50000)
	if err != nil {
		t.Fatalf("StartFloat failed: %v", err)
	}
	if f.CurrentBalance != 50000 {
		t.Errorf("expected current balance 50000, got %v", f.CurrentBalance)
	}

	// Only one active float per day.
	if _, err := svc.StartFloat(ctx, testSession(), 10000); !errors.Is(err, ErrFloatAlreadyActive) {
		t.Fatalf("expected ErrFloatAlreadyActive, got %v", err)
	}

	closed, err := svc.CloseFloat(ctx, testSession())
	if err != nil {
		t.Fatalf("CloseFloat failed: %v", err)
	}
	if closed.ClosingBalance == nil || *closed.ClosingBalance != 50000 {
		t.Errorf("expected closing balance 50000, got %v", closed.ClosingBalance)
	}

	// Closing frees the day for a new float.
	if _, err := svc.StartFloat(ctx, testSession(), 20000); err != nil {
		t.Fatalf("StartFloat after close failed: %v", err)
	}
}

func TestStartFloatValidation(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.StartFloat(ctx, testSession(), 0); !errors.Is(err, ErrInvalidOpeningBalance) {
		t.Fatalf("expected ErrInvalidOpeningBalance, got %v", err)
	}
	if _, err := svc.StartFloat(ctx, nil, 1000); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestWithdrawalChargesAndDebitsFloat(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	f, err := svc.StartFloat(ctx, testSession(), 50000)
	if err != nil {
		t.Fatalf("StartFloat failed: %v", err)
	}

	txn, err := svc.AddWithdrawal(ctx, testSession(), WithdrawalInput{Amount: 7000})
	if err != nil {
		t.Fatalf("AddWithdrawal failed: %v", err)
	}
	if txn.ServiceCharge != 200 {
		t.Errorf("expected charge 200 for 7000, got %v", txn.ServiceCharge)
	}
	if txn.TotalPaid != 7200 {
		t.Errorf("expected total paid 7200, got %v", txn.TotalPaid)
	}

	floats, err := store.POS.ListFloats(ctx)
	if err != nil {
		t.Fatalf("ListFloats failed: %v", err)
	}
	if len(floats) != 1 {
		t.Fatalf("expected one float, got %d", len(floats))
	}
	got := floats[0]
	if got.ID != f.ID {
		t.Fatalf("unexpected float %s", got.ID)
	}
	// Only the withdrawn amount leaves the drawer.
	if got.CurrentBalance != 43000 {
		t.Errorf("expected balance 43000, got %v", got.CurrentBalance)
	}
	if got.TotalWithdrawalsProcessed != 7000 {
		t.Errorf("expected withdrawals 7000, got %v", got.TotalWithdrawalsProcessed)
	}
	if got.TotalChargesEarned != 200 {
		t.Errorf("expected charges 200, got %v", got.TotalChargesEarned)
	}
}

func TestWithdrawalGuards(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	// Without an open float every withdrawal is rejected.
	if _, err := svc.AddWithdrawal(ctx, testSession(), WithdrawalInput{Amount: 1000}); !errors.Is(err, ErrNoActiveFloat) {
		t.Fatalf("expected ErrNoActiveFloat, got %v", err)
	}

	if _, err := svc.StartFloat(ctx, testSession(), 5000); err != nil {
		t.Fatalf("StartFloat failed: %v", err)
	}

	if _, err := svc.AddWithdrawal(ctx, testSession(), WithdrawalInput{Amount: 0}); !errors.Is(err, ErrInvalidWithdrawal) {
		t.Fatalf("expected ErrInvalidWithdrawal, got %v", err)
	}
	if _, err := svc.AddWithdrawal(ctx, testSession(), WithdrawalInput{Amount: 6000}); !errors.Is(err, ErrFloatBalanceExceeded) {
		t.Fatalf("expected ErrFloatBalanceExceeded, got %v", err)
	}
}
