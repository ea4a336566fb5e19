package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"shop-manager/internal/config"
	"shop-manager/internal/connectivity"
	custommiddleware "shop-manager/internal/middleware"
	"shop-manager/internal/remote"
	"shop-manager/internal/repository"
	"shop-manager/internal/service"
	"shop-manager/internal/syncengine"
	"shop-manager/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	monitor *connectivity.Monitor
}

// New wires the whole process: local store, remote store, connectivity
// monitor, sync engine, domain services and the HTTP surface. The monitor
// triggers a backoff sync whenever connectivity comes back.
func New(cfg *config.Config, logger *zap.Logger, db *sql.DB) (*Server, error) {
	store := repository.NewStore(db)

	remoteStore, err := newRemoteStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build remote store: %w", err)
	}

	probe, err := connectivity.NewProbe(cfg.Remote.BaseURL, cfg.Sync.ProbeTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build connectivity probe: %w", err)
	}
	monitor := connectivity.NewMonitor(probe, cfg.Sync.PollInterval, logger)

	engineCfg := syncengine.DefaultConfig()
	engineCfg.CallTimeout = cfg.Remote.Timeout
	engineCfg.MaxRetries = cfg.Sync.MaxRetries
	engine := syncengine.New(store, remoteStore, probe, logger, engineCfg)

	monitor.Subscribe(func(online bool) {
		if !online {
			engine.Refresh(context.Background())
			return
		}
		go func() {
			if err := engine.SyncWithBackoff(context.Background()); err != nil {
				logger.Warn("Sync on connectivity regain failed", zap.Error(err))
			}
		}()
	})

	shop := service.NewShopService(store, engine, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.Recoverer(logger))
	router.Use(custommiddleware.RequestLogger(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	transport.NewShopHandler(shop, logger).RegisterRoutes(router)
	transport.NewSyncHandler(engine, logger).RegisterRoutes(router)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		monitor: monitor,
	}, nil
}

func newRemoteStore(cfg *config.Config, logger *zap.Logger) (remote.Store, error) {
	switch cfg.Remote.Kind {
	case "postgres":
		return remote.NewPostgres(cfg.Remote.DSN)
	case "rest":
		return remote.NewREST(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Remote.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown remote kind %q", cfg.Remote.Kind)
	}
}

// StartMonitor begins connectivity polling. Separate from New so tests
// can build a server without background goroutines.
func (s *Server) StartMonitor(ctx context.Context) {
	s.monitor.Start(ctx)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.monitor.Stop()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
