package transport

import (
	"errors"
	"net/http"

	"shop-manager/internal/domain"
	"shop-manager/internal/middleware"
	"shop-manager/internal/repository"
	"shop-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShopHandler exposes the domain operations over HTTP. The app shell in
// front of this process authenticates users against the remote backend
// and forwards the session identity headers on every request.
type ShopHandler struct {
	shop   *service.ShopService
	logger *zap.Logger
}

func NewShopHandler(shop *service.ShopService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shop:   shop,
		logger: logger,
	}
}

// RegisterRoutes registers all shop routes.
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.AddItem)
		r.Get("/low-stock", h.ListLowStock)
		r.Patch("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
		r.Get("/{id}/logs", h.ListItemLogs)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.AddCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Post("/", h.AddSale)
		r.Get("/{id}", h.GetSale)
		r.Post("/{id}/return", h.ReturnSale)
	})

	r.Route("/api/pos", func(r chi.Router) {
		r.Get("/floats", h.ListFloats)
		r.Post("/floats", h.StartFloat)
		r.Post("/floats/close", h.CloseFloat)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/withdrawals", h.AddWithdrawal)
	})

	r.Route("/api/restocks", func(r chi.Router) {
		r.Get("/", h.ListRestocks)
		r.Post("/", h.AddRestock)
	})

	r.Get("/api/inventory-logs", h.ListInventoryLogs)
	r.Post("/api/session", h.OpenSession)
	r.Post("/api/session/logout", h.Logout)
}

// sessionFrom rebuilds the caller's session from the identity headers.
// Returns nil when no user is attached; the service rejects that.
func sessionFrom(r *http.Request) *service.Session {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return nil
	}
	return &service.Session{
		UserID:   id,
		UserName: r.Header.Get("X-User-Name"),
		Role:     domain.UserRole(r.Header.Get("X-User-Role")),
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrSaleNotFound),
		errors.Is(err, repository.ErrFloatNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrFloatAlreadyActive),
		errors.Is(err, repository.ErrDuplicateSaleNumber):
		return http.StatusConflict
	case errors.Is(err, service.ErrItemNameRequired),
		errors.Is(err, service.ErrCategoryNameRequired),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrFractionalNotAllowed),
		errors.Is(err, service.ErrNoActiveFloat),
		errors.Is(err, service.ErrInvalidOpeningBalance),
		errors.Is(err, service.ErrInvalidWithdrawal),
		errors.Is(err, service.ErrFloatBalanceExceeded),
		errors.Is(err, service.ErrEmptyRestock),
		errors.Is(err, service.ErrSaleNotReturnable),
		errors.Is(err, service.ErrSupplierRequired),
		errors.Is(err, service.ErrReasonRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ShopHandler) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Operation failed", zap.Error(err))
		middleware.RespondWithError(w, status, "internal server error")
		return
	}
	middleware.RespondWithError(w, status, err.Error())
}

// decode reads and validates the request body, writing the 400 itself.
// Returns false when the handler should stop.
func (h *ShopHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Request validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.shop.Items(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.shop.LowStockItems(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.shop.AddItem(r.Context(), sessionFrom(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItemRequest wraps a partial item update with an optional reason.
// A reason routes the update through the audited path.
type UpdateItemRequest struct {
	service.ItemUpdate
	Reason string `json:"reason"`
}

func (h *ShopHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	var err error
	if req.Reason != "" {
		err = h.shop.UpdateItemWithReason(r.Context(), sessionFrom(r), id, req.ItemUpdate, req.Reason)
	} else {
		err = h.shop.UpdateItem(r.Context(), sessionFrom(r), id, req.ItemUpdate)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item updated"})
}

func (h *ShopHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.shop.DeleteItem(r.Context(), sessionFrom(r), id); err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (h *ShopHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.shop.Categories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// AddCategoryRequest carries a new category name.
type AddCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *ShopHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.shop.AddCategory(r.Context(), sessionFrom(r), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *ShopHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	var (
		sales []*domain.Sale
		err   error
	)
	if from != "" && to != "" {
		sales, err = h.shop.SalesBetween(r.Context(), from, to)
	} else {
		sales, err = h.shop.Sales(r.Context())
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// SaleResponse pairs a sale with its lines.
type SaleResponse struct {
	Sale  *domain.Sale       `json:"sale"`
	Lines []*domain.SaleItem `json:"lines"`
}

func (h *ShopHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sale, lines, err := h.shop.SaleByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, SaleResponse{Sale: sale, Lines: lines})
}

func (h *ShopHandler) AddSale(w http.ResponseWriter, r *http.Request) {
	var req service.SaleInput
	if !h.decode(w, r, &req) {
		return
	}

	sale, err := h.shop.AddSale(r.Context(), sessionFrom(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// ReturnSaleRequest carries the reason a sale is being returned.
type ReturnSaleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ShopHandler) ReturnSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ReturnSaleRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.shop.ReturnSale(r.Context(), sessionFrom(r), id, req.Reason); err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "sale returned"})
}

func (h *ShopHandler) ListFloats(w http.ResponseWriter, r *http.Request) {
	floats, err := h.shop.Floats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, floats)
}

// StartFloatRequest opens the day's cash drawer.
type StartFloatRequest struct {
	OpeningBalance float64 `json:"opening_balance" validate:"required,gt=0"`
}

func (h *ShopHandler) StartFloat(w http.ResponseWriter, r *http.Request) {
	var req StartFloatRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := h.shop.StartFloat(r.Context(), sessionFrom(r), req.OpeningBalance)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, f)
}

func (h *ShopHandler) CloseFloat(w http.ResponseWriter, r *http.Request) {
	f, err := h.shop.CloseFloat(r.Context(), sessionFrom(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, f)
}

func (h *ShopHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")

	var (
		txns []*domain.POSTransaction
		err  error
	)
	if day != "" {
		txns, err = h.shop.TransactionsForDay(r.Context(), day)
	} else {
		txns, err = h.shop.Transactions(r.Context())
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, txns)
}

func (h *ShopHandler) AddWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req service.WithdrawalInput
	if !h.decode(w, r, &req) {
		return
	}

	txn, err := h.shop.AddWithdrawal(r.Context(), sessionFrom(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, txn)
}

func (h *ShopHandler) ListRestocks(w http.ResponseWriter, r *http.Request) {
	restocks, err := h.shop.Restocks(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, restocks)
}

func (h *ShopHandler) AddRestock(w http.ResponseWriter, r *http.Request) {
	var req service.RestockInput
	if !h.decode(w, r, &req) {
		return
	}

	restock, err := h.shop.AddRestock(r.Context(), sessionFrom(r), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, restock)
}

func (h *ShopHandler) ListInventoryLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.shop.InventoryLogs(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, logs)
}

func (h *ShopHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.shop.DeleteCategory(r.Context(), sessionFrom(r), id); err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *ShopHandler) ListItemLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	logs, err := h.shop.InventoryLogsForItem(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, logs)
}

// OpenSessionRequest carries the account the remote backend authenticated.
type OpenSessionRequest struct {
	ID       string `json:"id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin salesperson"`
}

// OpenSession caches the authenticated account locally so later
// operations can attribute audit rows while offline.
func (h *ShopHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.shop.CacheUser(r.Context(), &domain.User{
		ID:       req.ID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("Session opened", zap.String("user_id", sess.UserID))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"user_id":   sess.UserID,
		"user_name": sess.UserName,
		"role":      string(sess.Role),
	})
}

// Logout wipes the local store. The caller is expected to discard its
// session afterwards.
func (h *ShopHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.shop.Logout(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("Local data cleared on logout")
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
