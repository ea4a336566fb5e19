package database

import (
	"testing"

	"go.uber.org/zap"
)

func TestMigrationsCreateFullSchema(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	tables := []string{
		"users", "categories", "items", "sales", "sale_items",
		"pos_floats", "pos_transactions", "inventory_logs",
		"restocks", "restock_items", "sync_queue", "app_metadata",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("first RunMigrations failed: %v", err)
	}
	if err := RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}

func TestSaleNumberUniqueIndex(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	insert := `
		INSERT INTO sales (id, sale_number, status, subtotal, additional_charges,
			total_amount, profit_amount, payment_method, created_by, sale_date,
			created_at, updated_at)
		VALUES (?, ?, 'completed', 0, 0, 0, 0, 'cash', 'u', 'd', 'c', 'c')
	`
	if _, err := db.Exec(insert, "sale-1", "SL-20260829-AAAAA"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "sale-2", "SL-20260829-AAAAA"); err == nil {
		t.Fatal("expected unique violation on duplicate sale number")
	}
}
