package service

import (
	"context"
	"fmt"
	"strconv"

	"shop-manager/internal/domain"
	"shop-manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Syncer is the sync engine surface the domain layer needs: fire-and-
// forget triggering after a successful mutation.
type Syncer interface {
	TrySync()
	Refresh(ctx context.Context)
}

// ShopService is the domain operations layer. Every business mutation
// computes its derived fields, writes the local store and enqueues the
// matching outbox entries inside one transaction, then opportunistically
// triggers a sync pass. The mutation is complete and durable locally
// whether or not that sync ever reaches the remote.
type ShopService struct {
	store  *repository.Store
	syncer Syncer
	tiers  []domain.ChargeTier
	log    *zap.Logger
}

func NewShopService(store *repository.Store, syncer Syncer, log *zap.Logger) *ShopService {
	return &ShopService{
		store:  store,
		syncer: syncer,
		tiers:  DefaultChargeTiers,
		log:    log,
	}
}

func requireSession(sess *Session) error {
	if sess == nil || sess.UserID == "" {
		return ErrNotLoggedIn
	}
	return nil
}

func pendingOp(op domain.SyncOperation) *string {
	s := string(op)
	return &s
}

// AddItemInput carries the caller-supplied fields of a new item.
type AddItemInput struct {
	Name            string  `json:"name" validate:"required"`
	SKU             string  `json:"sku"`
	CategoryID      *string `json:"category_id"`
	Unit            string  `json:"unit"`
	CostPrice       float64 `json:"cost_price" validate:"gte=0"`
	SellingPrice    float64 `json:"selling_price" validate:"gte=0"`
	QuantityInStock float64 `json:"quantity_in_stock" validate:"gte=0"`
	ReorderLevel    float64 `json:"reorder_level" validate:"gte=0"`
	AllowFractional bool    `json:"allow_fractional"`
}

func (s *ShopService) AddItem(ctx context.Context, sess *Session, input AddItemInput) (*domain.Item, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, ErrItemNameRequired
	}

	now := domain.NowISO()
	item := &domain.Item{
		ID:              uuid.New().String(),
		Name:            input.Name,
		SKU:             input.SKU,
		CategoryID:      input.CategoryID,
		Unit:            input.Unit,
		CostPrice:       input.CostPrice,
		SellingPrice:    input.SellingPrice,
		QuantityInStock: input.QuantityInStock,
		ReorderLevel:    input.ReorderLevel,
		AllowFractional: input.AllowFractional,
		CreatedAt:       now,
		UpdatedAt:       now,
		PendingOp:       pendingOp(domain.OpCreate),
	}
	if item.SKU == "" {
		item.SKU = GenerateSKU(item.Name)
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.ReorderLevel == 0 {
		item.ReorderLevel = 5
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Items.Create(ctx, item); err != nil {
			return err
		}
		_, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableItems, item.ID, item.Row())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Item added", zap.String("item_id", item.ID), zap.String("sku", item.SKU))
	s.syncer.TrySync()
	return item, nil
}

// ItemUpdate is a partial item update; nil fields are left untouched.
type ItemUpdate struct {
	Name            *string  `json:"name"`
	SKU             *string  `json:"sku"`
	CategoryID      *string  `json:"category_id"`
	Unit            *string  `json:"unit"`
	CostPrice       *float64 `json:"cost_price"`
	SellingPrice    *float64 `json:"selling_price"`
	QuantityInStock *float64 `json:"quantity_in_stock"`
	ReorderLevel    *float64 `json:"reorder_level"`
	AllowFractional *bool    `json:"allow_fractional"`
}

// wireFields maps the set fields onto wire column names.
func (u ItemUpdate) wireFields() map[string]any {
	fields := map[string]any{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.SKU != nil {
		fields["sku"] = *u.SKU
	}
	if u.CategoryID != nil {
		fields["category_id"] = *u.CategoryID
	}
	if u.Unit != nil {
		fields["unit"] = *u.Unit
	}
	if u.CostPrice != nil {
		fields["cost_price"] = *u.CostPrice
	}
	if u.SellingPrice != nil {
		fields["selling_price"] = *u.SellingPrice
	}
	if u.QuantityInStock != nil {
		fields["quantity_in_stock"] = *u.QuantityInStock
	}
	if u.ReorderLevel != nil {
		fields["reorder_level"] = *u.ReorderLevel
	}
	if u.AllowFractional != nil {
		fields["allow_fractional"] = *u.AllowFractional
	}
	return fields
}

// sensitiveColumns are the fields whose direct edit is restricted to
// admins; everyone else goes through UpdateItemWithReason.
var sensitiveColumns = map[string]bool{
	"name": true, "selling_price": true, "cost_price": true,
	"quantity_in_stock": true, "reorder_level": true,
}

func touchesSensitive(wire map[string]any) bool {
	for col := range wire {
		if sensitiveColumns[col] {
			return true
		}
	}
	return false
}

func (s *ShopService) UpdateItem(ctx context.Context, sess *Session, id string, updates ItemUpdate) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	wire := updates.wireFields()
	if len(wire) == 0 {
		return nil
	}
	if touchesSensitive(wire) && !sess.Privileged() {
		return ErrReasonRequired
	}
	wire["updated_at"] = domain.NowISO()

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		return applyItemUpdate(ctx, tx, id, wire)
	})
	if err != nil {
		return err
	}

	s.syncer.TrySync()
	return nil
}

// applyItemUpdate runs the shared tail of every item update path: the
// local partial write with sync bookkeeping plus the outbox entry.
func applyItemUpdate(ctx context.Context, tx *repository.Store, id string, wire map[string]any) error {
	local := make(map[string]any, len(wire)+2)
	for k, v := range wire {
		local[k] = v
	}
	local["is_synced"] = 0
	local["pending_operation"] = string(domain.OpUpdate)

	if err := tx.Items.UpdateFields(ctx, id, local); err != nil {
		return err
	}
	_, err := tx.Outbox.Enqueue(ctx, domain.OpUpdate, domain.TableItems, id, wire)
	return err
}

// auditedFields are the sensitive item fields; changing any of them
// through UpdateItemWithReason produces one immutable audit row each.
type auditedField struct {
	column string
	oldVal func(*domain.Item) string
	newVal func(ItemUpdate) *string
}

var auditedFields = []auditedField{
	{
		column: "name",
		oldVal: func(i *domain.Item) string { return i.Name },
		newVal: func(u ItemUpdate) *string { return u.Name },
	},
	{
		column: "selling_price",
		oldVal: func(i *domain.Item) string { return formatFloat(i.SellingPrice) },
		newVal: func(u ItemUpdate) *string {
			if u.SellingPrice == nil {
				return nil
			}
			s := formatFloat(*u.SellingPrice)
			return &s
		},
	},
	{
		column: "cost_price",
		oldVal: func(i *domain.Item) string { return formatFloat(i.CostPrice) },
		newVal: func(u ItemUpdate) *string {
			if u.CostPrice == nil {
				return nil
			}
			s := formatFloat(*u.CostPrice)
			return &s
		},
	},
	{
		column: "quantity_in_stock",
		oldVal: func(i *domain.Item) string { return formatFloat(i.QuantityInStock) },
		newVal: func(u ItemUpdate) *string {
			if u.QuantityInStock == nil {
				return nil
			}
			s := formatFloat(*u.QuantityInStock)
			return &s
		},
	},
	{
		column: "reorder_level",
		oldVal: func(i *domain.Item) string { return formatFloat(i.ReorderLevel) },
		newVal: func(u ItemUpdate) *string {
			if u.ReorderLevel == nil {
				return nil
			}
			s := formatFloat(*u.ReorderLevel)
			return &s
		},
	},
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// UpdateItemWithReason diffs the incoming values against the current row
// and writes one inventory log per changed sensitive field before
// applying the update, all in a single transaction. The log rows and the
// update each get their own outbox entries.
func (s *ShopService) UpdateItemWithReason(ctx context.Context, sess *Session, id string, updates ItemUpdate, reason string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	wire := updates.wireFields()
	if len(wire) == 0 {
		return nil
	}
	now := domain.NowISO()
	wire["updated_at"] = now

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		existing, err := tx.Items.FindByID(ctx, id)
		if err != nil {
			return err
		}

		for _, field := range auditedFields {
			newVal := field.newVal(updates)
			if newVal == nil {
				continue
			}
			oldVal := field.oldVal(existing)
			if *newVal == oldVal {
				continue
			}

			log := &domain.InventoryLog{
				ID:           uuid.New().String(),
				ItemID:       existing.ID,
				ItemName:     existing.Name,
				UserID:       sess.UserID,
				UserName:     sess.UserName,
				ChangeType:   domain.ChangeUpdate,
				FieldChanged: field.column,
				OldValue:     oldVal,
				NewValue:     *newVal,
				Reason:       reason,
				CreatedAt:    now,
				PendingOp:    pendingOp(domain.OpCreate),
			}
			if err := tx.InventoryLogs.Create(ctx, log); err != nil {
				return err
			}
			if _, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableInventoryLogs, log.ID, log.Row()); err != nil {
				return err
			}
		}

		return applyItemUpdate(ctx, tx, id, wire)
	})
	if err != nil {
		return err
	}

	s.syncer.TrySync()
	return nil
}

func (s *ShopService) DeleteItem(ctx context.Context, sess *Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Items.Delete(ctx, id); err != nil {
			return err
		}
		_, err := tx.Outbox.Enqueue(ctx, domain.OpDelete, domain.TableItems, id, map[string]any{})
		return err
	})
	if err != nil {
		return err
	}

	s.syncer.TrySync()
	return nil
}

func (s *ShopService) AddCategory(ctx context.Context, sess *Session, name string) (*domain.Category, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: domain.NowISO(),
		PendingOp: pendingOp(domain.OpCreate),
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Categories.Create(ctx, category); err != nil {
			return err
		}
		_, err := tx.Outbox.Enqueue(ctx, domain.OpCreate, domain.TableCategories, category.ID, category.Row())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncer.TrySync()
	return category, nil
}

func (s *ShopService) DeleteCategory(ctx context.Context, sess *Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Categories.Delete(ctx, id); err != nil {
			return err
		}
		_, err := tx.Outbox.Enqueue(ctx, domain.OpDelete, domain.TableCategories, id, map[string]any{})
		return err
	})
	if err != nil {
		return err
	}

	s.syncer.TrySync()
	return nil
}

// CacheUser stores a remote-authenticated account locally so audit
// attribution keeps working offline. Called when a session is opened.
func (s *ShopService) CacheUser(ctx context.Context, user *domain.User) (*Session, error) {
	if user == nil || user.ID == "" {
		return nil, ErrNotLoggedIn
	}
	if user.CreatedAt == "" {
		user.CreatedAt = domain.NowISO()
	}
	if err := s.store.Users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.syncer.Refresh(ctx)
	return &Session{UserID: user.ID, UserName: user.FullName, Role: user.Role}, nil
}

func (s *ShopService) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.store.Users.FindByID(ctx, id)
}

// Logout wipes every local table. The schema stays in place for the next
// session.
func (s *ShopService) Logout(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear local data: %w", err)
	}
	s.syncer.Refresh(ctx)
	return nil
}

// Read paths. All reads are served from the local store so they work
// offline and never wait on the network.

func (s *ShopService) Items(ctx context.Context) ([]*domain.Item, error) {
	return s.store.Items.List(ctx)
}

func (s *ShopService) LowStockItems(ctx context.Context) ([]*domain.Item, error) {
	return s.store.Items.ListBelowReorder(ctx)
}

func (s *ShopService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.Categories.List(ctx)
}

func (s *ShopService) Sales(ctx context.Context) ([]*domain.Sale, error) {
	return s.store.Sales.List(ctx)
}

func (s *ShopService) SalesBetween(ctx context.Context, from, to string) ([]*domain.Sale, error) {
	return s.store.Sales.ListByDateRange(ctx, from, to)
}

func (s *ShopService) SaleByID(ctx context.Context, id string) (*domain.Sale, []*domain.SaleItem, error) {
	return s.store.Sales.FindByID(ctx, id)
}

func (s *ShopService) Floats(ctx context.Context) ([]*domain.POSFloat, error) {
	return s.store.POS.ListFloats(ctx)
}

func (s *ShopService) Transactions(ctx context.Context) ([]*domain.POSTransaction, error) {
	return s.store.POS.ListTransactions(ctx)
}

func (s *ShopService) TransactionsForDay(ctx context.Context, day string) ([]*domain.POSTransaction, error) {
	return s.store.POS.ListTransactionsByDay(ctx, day)
}

func (s *ShopService) InventoryLogs(ctx context.Context) ([]*domain.InventoryLog, error) {
	return s.store.InventoryLogs.List(ctx)
}

func (s *ShopService) InventoryLogsForItem(ctx context.Context, itemID string) ([]*domain.InventoryLog, error) {
	return s.store.InventoryLogs.ListForItem(ctx, itemID)
}

func (s *ShopService) Restocks(ctx context.Context) ([]*domain.Restock, error) {
	return s.store.Restocks.List(ctx)
}
