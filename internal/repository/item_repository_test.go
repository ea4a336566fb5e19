package repository

import (
	"context"
	"errors"
	"testing"

	"shop-manager/internal/domain"
)

func TestItemCreateAndFind(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	item := testItem("item-1", "Rice")
	item.AllowFractional = true
	if err := store.Items.Create(ctx, item); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Items.FindByID(ctx, "item-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Name != "Rice" || got.SellingPrice != 1000 || !got.AllowFractional {
		t.Errorf("unexpected item: %+v", got)
	}
}

func TestItemUpdateFieldsRejectsUnknownColumn(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Items.Create(ctx, testItem("item-1", "Rice")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := store.Items.UpdateFields(ctx, "item-1", map[string]any{"id": "hijack"})
	if err == nil {
		t.Fatal("expected error for non-updatable column")
	}
}

func TestItemUpdateFieldsNotFound(t *testing.T) {
	store := testStore(t)

	err := store.Items.UpdateFields(context.Background(), "missing", map[string]any{"name": "x"})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Items.Create(ctx, testItem("item-1", "Rice")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Items.Delete(ctx, "item-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Items.Delete(ctx, "item-1"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestListBelowReorder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	low := testItem("item-low", "Beans")
	low.QuantityInStock = 3
	low.ReorderLevel = 5

	edge := testItem("item-edge", "Salt")
	edge.QuantityInStock = 5
	edge.ReorderLevel = 5

	high := testItem("item-high", "Rice")
	high.QuantityInStock = 50
	high.ReorderLevel = 5

	for _, item := range []*domain.Item{low, edge, high} {
		if err := store.Items.Create(ctx, item); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.Items.ListBelowReorder(ctx)
	if err != nil {
		t.Fatalf("ListBelowReorder failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 low-stock items, got %d", len(got))
	}
	// Ordered by name: Beans then Salt.
	if got[0].ID != "item-low" || got[1].ID != "item-edge" {
		t.Errorf("unexpected low-stock set: %s, %s", got[0].ID, got[1].ID)
	}
}
