package transport

import (
	"errors"
	"net/http"

	"shop-manager/internal/middleware"
	"shop-manager/internal/syncengine"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SyncHandler exposes the sync engine: current status for the UI badge
// and a manual trigger for pull-to-refresh.
type SyncHandler struct {
	engine *syncengine.Engine
	logger *zap.Logger
}

func NewSyncHandler(engine *syncengine.Engine, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		engine: engine,
		logger: logger,
	}
}

// RegisterRoutes registers the sync routes.
func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sync", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Post("/", h.Trigger)
	})
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.engine.Refresh(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Trigger runs a full pass synchronously so the caller sees the outcome.
// A pass already in flight coalesces into a no-op success.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	err := h.engine.Sync(r.Context())
	if errors.Is(err, syncengine.ErrOffline) {
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "offline")
		return
	}
	if err != nil {
		h.logger.Error("Manual sync failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "sync failed")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.engine.Snapshot())
}
