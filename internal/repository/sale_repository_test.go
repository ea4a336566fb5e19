package repository

import (
	"context"
	"errors"
	"testing"

	"shop-manager/internal/domain"
)

func testSale(id, number, date string) *domain.Sale {
	return &domain.Sale{
		ID:            id,
		SaleNumber:    number,
		Status:        domain.SaleCompleted,
		Subtotal:      50000,
		TotalAmount:   50000,
		ProfitAmount:  10000,
		PaymentMethod: domain.PaymentCash,
		CreatedBy:     "user-1",
		SaleDate:      date,
		CreatedAt:     date,
		UpdatedAt:     date,
	}
}

func TestSaleCreateWithLines(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	now := domain.NowISO()
	sale := testSale("sale-1", "SL-20260829-AB12C", now)
	lines := []*domain.SaleItem{
		{
			ID: "line-1", SaleID: "sale-1", ItemID: "item-1", ItemName: "Rice",
			Quantity: 2, UnitPrice: 25000, CostPrice: 20000, LineTotal: 50000,
			ProfitMargin: 20, CreatedAt: now,
		},
	}

	if err := store.Sales.Create(ctx, sale, lines); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, gotLines, err := store.Sales.FindByID(ctx, "sale-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.SaleNumber != "SL-20260829-AB12C" || got.TotalAmount != 50000 {
		t.Errorf("unexpected sale: %+v", got)
	}
	if len(gotLines) != 1 || gotLines[0].ItemName != "Rice" {
		t.Errorf("unexpected lines: %+v", gotLines)
	}
}

func TestSaleDuplicateNumber(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	now := domain.NowISO()
	if err := store.Sales.Create(ctx, testSale("sale-1", "SL-20260829-AB12C", now), nil); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := store.Sales.Create(ctx, testSale("sale-2", "SL-20260829-AB12C", now), nil)
	if !errors.Is(err, ErrDuplicateSaleNumber) {
		t.Fatalf("expected ErrDuplicateSaleNumber, got %v", err)
	}
}

func TestSaleListByDateRange(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	inside := testSale("sale-in", "SL-A", "2026-08-15T10:00:00.000Z")
	before := testSale("sale-before", "SL-B", "2026-07-01T10:00:00.000Z")
	after := testSale("sale-after", "SL-C", "2026-09-01T10:00:00.000Z")
	for _, sale := range []*domain.Sale{inside, before, after} {
		if err := store.Sales.Create(ctx, sale, nil); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.Sales.ListByDateRange(ctx, "2026-08-01T00:00:00.000Z", "2026-08-31T23:59:59.999Z")
	if err != nil {
		t.Fatalf("ListByDateRange failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "sale-in" {
		t.Errorf("unexpected range result: %+v", got)
	}
}

func TestSaleUpdateStatus(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	now := domain.NowISO()
	if err := store.Sales.Create(ctx, testSale("sale-1", "SL-A", now), nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reason := "damaged goods"
	if err := store.Sales.UpdateStatus(ctx, "sale-1", domain.SaleReturned, &reason, domain.NowISO()); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, _, err := store.Sales.FindByID(ctx, "sale-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Status != domain.SaleReturned {
		t.Errorf("expected returned status, got %s", got.Status)
	}
	if got.ReturnReason == nil || *got.ReturnReason != reason {
		t.Errorf("expected return reason %q, got %v", reason, got.ReturnReason)
	}
	if got.IsSynced {
		t.Error("status change must mark the row for push")
	}

	if err := store.Sales.UpdateStatus(ctx, "missing", domain.SaleReturned, &reason, domain.NowISO()); !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}
