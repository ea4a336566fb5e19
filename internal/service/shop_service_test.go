package service

import (
	"context"
	"errors"
	"testing"

	"shop-manager/internal/database"
	"shop-manager/internal/domain"
	"shop-manager/internal/repository"

	"go.uber.org/zap"
)

// fakeSyncer counts trigger calls; mutations must never block on it.
type fakeSyncer struct {
	triggers int
}

func (f *fakeSyncer) TrySync()                    { f.triggers++ }
func (f *fakeSyncer) Refresh(ctx context.Context) {}

func testService(t *testing.T) (*ShopService, *repository.Store, *fakeSyncer) {
	t.Helper()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	store := repository.NewStore(db)
	syncer := &fakeSyncer{}
	return NewShopService(store, syncer, zap.NewNop()), store, syncer
}

func testSession() *Session {
	return &Session{UserID: "user-1", UserName: "Amina", Role: domain.RoleSalesperson}
}

func addTestItem(t *testing.T, svc *ShopService, name string, cost, price, stock float64) *domain.Item {
	t.Helper()
	item, err := svc.AddItem(context.Background(), testSession(), AddItemInput{
		Name:            name,
		CostPrice:       cost,
		SellingPrice:    price,
		QuantityInStock: stock,
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return item
}

func TestAddItemDefaultsAndOutbox(t *testing.T) {
	svc, store, syncer := testService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, testSession(), AddItemInput{
		Name:         "Golden Rice",
		CostPrice:    800,
		SellingPrice: 1000,
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if item.Unit != "pcs" {
		t.Errorf("expected default unit pcs, got %q", item.Unit)
	}
	if item.ReorderLevel != 5 {
		t.Errorf("expected default reorder level 5, got %v", item.ReorderLevel)
	}
	if item.SKU == "" {
		t.Error("expected generated SKU")
	}
	if item.PendingOp == nil || *item.PendingOp != "create" {
		t.Errorf("expected pending create, got %v", item.PendingOp)
	}

	entries, err := store.Outbox.ListFIFO(ctx)
	if err != nil {
		t.Fatalf("ListFIFO failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Operation != domain.OpCreate || entries[0].TableName != domain.TableItems {
		t.Errorf("unexpected outbox: %+v", entries)
	}
	if syncer.triggers != 1 {
		t.Errorf("expected one sync trigger, got %d", syncer.triggers)
	}
}

func TestAddItemRequiresSessionAndName(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, nil, AddItemInput{Name: "x"}); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := svc.AddItem(ctx, testSession(), AddItemInput{}); !errors.Is(err, ErrItemNameRequired) {
		t.Fatalf("expected ErrItemNameRequired, got %v", err)
	}
}

func TestAddSaleTotalsAndStock(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)

	sale, err := svc.AddSale(ctx, testSession(), SaleInput{
		Lines:         []domain.CartLine{{ItemID: rice.ID, Quantity: 2}},
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("AddSale failed: %v", err)
	}

	if sale.Subtotal != 50000 {
		t.Errorf("expected subtotal 50000, got %v", sale.Subtotal)
	}
	if sale.TotalAmount != 50000 {
		t.Errorf("expected total 50000, got %v", sale.TotalAmount)
	}
	if sale.ProfitAmount != 10000 {
		t.Errorf("expected profit 10000, got %v", sale.ProfitAmount)
	}

	item, err := store.Items.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item.QuantityInStock != 8 {
		t.Errorf("expected stock 8, got %v", item.QuantityInStock)
	}

	_, lines, err := store.Sales.FindByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].ProfitMargin != 20 {
		t.Errorf("expected margin 20, got %v", lines[0].ProfitMargin)
	}

	// Outbox: the item create, then per-sale entries in write order.
	entries, err := store.Outbox.ListFIFO(ctx)
	if err != nil {
		t.Fatalf("ListFIFO failed: %v", err)
	}
	var kinds []string
	for _, entry := range entries {
		kinds = append(kinds, string(entry.Operation)+" "+entry.TableName)
	}
	want := []string{"create items", "update items", "create sales", "create sale_items"}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d outbox entries, got %v", len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], kinds[i])
		}
	}
}

func TestAddSaleInsufficientStockLeavesNothingBehind(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 1)
	before, _ := store.Outbox.Count(ctx)

	_, err := svc.AddSale(ctx, testSession(), SaleInput{
		Lines: []domain.CartLine{{ItemID: rice.ID, Quantity: 2}},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	item, err := store.Items.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item.QuantityInStock != 1 {
		t.Errorf("stock must be untouched on rejection, got %v", item.QuantityInStock)
	}

	after, _ := store.Outbox.Count(ctx)
	if after != before {
		t.Errorf("rejected sale must enqueue nothing: %d -> %d", before, after)
	}

	sales, err := store.Sales.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sales) != 0 {
		t.Errorf("expected no sales, got %d", len(sales))
	}
}

func TestAddSaleFractionalGuard(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)

	_, err := svc.AddSale(ctx, testSession(), SaleInput{
		Lines: []domain.CartLine{{ItemID: rice.ID, Quantity: 1.5}},
	})
	if !errors.Is(err, ErrFractionalNotAllowed) {
		t.Fatalf("expected ErrFractionalNotAllowed, got %v", err)
	}
}

func TestAddSaleFractionalAllowed(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	flour, err := svc.AddItem(ctx, testSession(), AddItemInput{
		Name:            "Flour",
		Unit:            "kg",
		CostPrice:       300,
		SellingPrice:    500,
		QuantityInStock: 10,
		AllowFractional: true,
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	sale, err := svc.AddSale(ctx, testSession(), SaleInput{
		Lines: []domain.CartLine{{ItemID: flour.ID, Quantity: 2.5}},
	})
	if err != nil {
		t.Fatalf("AddSale failed: %v", err)
	}
	if sale.Subtotal != 1250 {
		t.Errorf("expected subtotal 1250, got %v", sale.Subtotal)
	}
}

func TestAddSaleEmptyCart(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.AddSale(context.Background(), testSession(), SaleInput{})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestUpdateItemWithReasonWritesOneLogPerChangedField(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)

	newPrice := 27000.0
	newStock := 12.0
	samePrice := rice.CostPrice
	err := svc.UpdateItemWithReason(ctx, testSession(), rice.ID, ItemUpdate{
		SellingPrice:    &newPrice,
		QuantityInStock: &newStock,
		CostPrice:       &samePrice,
	}, "stock count correction")
	if err != nil {
		t.Fatalf("UpdateItemWithReason failed: %v", err)
	}

	logs, err := store.InventoryLogs.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// cost_price did not change, so only two audit rows.
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}

	byField := map[string]*domain.InventoryLog{}
	for _, log := range logs {
		byField[log.FieldChanged] = log
	}
	price := byField["selling_price"]
	if price == nil || price.OldValue != "25000" || price.NewValue != "27000" {
		t.Errorf("unexpected selling_price log: %+v", price)
	}
	stock := byField["quantity_in_stock"]
	if stock == nil || stock.OldValue != "10" || stock.NewValue != "12" {
		t.Errorf("unexpected quantity_in_stock log: %+v", stock)
	}
	for _, log := range logs {
		if log.Reason != "stock count correction" || log.UserID != "user-1" {
			t.Errorf("log missing context: %+v", log)
		}
	}

	item, err := store.Items.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item.SellingPrice != 27000 || item.QuantityInStock != 12 {
		t.Errorf("update not applied: %+v", item)
	}
}

func TestUpdateItemSensitiveFieldsNeedPrivilegeOrReason(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)
	newPrice := 26000.0

	// A salesperson cannot silently edit a sensitive field.
	err := svc.UpdateItem(ctx, testSession(), rice.ID, ItemUpdate{SellingPrice: &newPrice})
	if !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	// An admin can.
	admin := &Session{UserID: "admin-1", UserName: "Ngozi", Role: domain.RoleAdmin}
	if err := svc.UpdateItem(ctx, admin, rice.ID, ItemUpdate{SellingPrice: &newPrice}); err != nil {
		t.Fatalf("UpdateItem as admin failed: %v", err)
	}

	item, err := store.Items.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item.SellingPrice != 26000 {
		t.Errorf("expected price 26000, got %v", item.SellingPrice)
	}
}

func TestDeleteCategoryEnqueuesDelete(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	category, err := svc.AddCategory(ctx, testSession(), "Grains")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	if err := svc.DeleteCategory(ctx, testSession(), category.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	entries, err := store.Outbox.ListFIFO(ctx)
	if err != nil {
		t.Fatalf("ListFIFO failed: %v", err)
	}
	last := entries[len(entries)-1]
	if last.Operation != domain.OpDelete || last.TableName != domain.TableCategories || last.RecordID != category.ID {
		t.Errorf("unexpected last entry: %+v", last)
	}
}

func TestCacheUserBuildsSession(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	sess, err := svc.CacheUser(ctx, &domain.User{
		ID:       "user-9",
		Email:    "amina@example.com",
		FullName: "Amina Yusuf",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("CacheUser failed: %v", err)
	}
	if sess.UserID != "user-9" || sess.UserName != "Amina Yusuf" || !sess.Privileged() {
		t.Errorf("unexpected session: %+v", sess)
	}

	cached, err := store.Users.FindByID(ctx, "user-9")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if cached.Email != "amina@example.com" {
		t.Errorf("unexpected cached user: %+v", cached)
	}

	// Caching again with a new role overwrites, not duplicates.
	if _, err := svc.CacheUser(ctx, &domain.User{
		ID: "user-9", Email: "amina@example.com", FullName: "Amina Yusuf",
		Role: domain.RoleSalesperson,
	}); err != nil {
		t.Fatalf("second CacheUser failed: %v", err)
	}
	cached, _ = store.Users.FindByID(ctx, "user-9")
	if cached.Role != domain.RoleSalesperson {
		t.Errorf("expected role updated, got %s", cached.Role)
	}
}

func TestReturnSale(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)
	sale, err := svc.AddSale(ctx, testSession(), SaleInput{
		Lines: []domain.CartLine{{ItemID: rice.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("AddSale failed: %v", err)
	}

	if err := svc.ReturnSale(ctx, testSession(), sale.ID, "wrong item"); err != nil {
		t.Fatalf("ReturnSale failed: %v", err)
	}

	got, _, err := store.Sales.FindByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Status != domain.SaleReturned {
		t.Errorf("expected returned, got %s", got.Status)
	}

	// A returned sale cannot be returned again.
	if err := svc.ReturnSale(ctx, testSession(), sale.ID, "again"); !errors.Is(err, ErrSaleNotReturnable) {
		t.Fatalf("expected ErrSaleNotReturnable, got %v", err)
	}
}

func TestRestockIncrementsStock(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	rice := addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)

	restock, err := svc.AddRestock(ctx, testSession(), RestockInput{
		SupplierName: "Mama Nkechi Supplies",
		Lines: []domain.RestockLine{
			{ItemID: rice.ID, Quantity: 5, UnitCost: 19000},
		},
	})
	if err != nil {
		t.Fatalf("AddRestock failed: %v", err)
	}
	if restock.TotalAmount != 95000 {
		t.Errorf("expected total 95000, got %v", restock.TotalAmount)
	}

	item, err := store.Items.FindByID(ctx, rice.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if item.QuantityInStock != 15 {
		t.Errorf("expected stock 15, got %v", item.QuantityInStock)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	addTestItem(t, svc, "Rice 50kg", 20000, 25000, 10)

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	items, err := store.Items.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty store after logout, got %d items", len(items))
	}
	count, _ := store.Outbox.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty outbox after logout, got %d", count)
	}
}
