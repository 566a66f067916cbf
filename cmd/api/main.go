package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelfsense_backend/internal/adapters"
	"shelfsense_backend/internal/alerts"
	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/auth"
	"shelfsense_backend/internal/events"
	apphttp "shelfsense_backend/internal/http"
	"shelfsense_backend/internal/inventory"
	"shelfsense_backend/internal/notification"
	"shelfsense_backend/internal/staffing"
	"shelfsense_backend/platform/config"
	"shelfsense_backend/platform/db"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/objstore"
	"shelfsense_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Environment)
	log.Info("starting server", "env", cfg.Environment, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	policy, err := domain.LoadPolicy(cfg.GetAlertPolicyPath())
	if err != nil {
		log.Error("failed to load alert policy", "error", err)
		panic("failed to load alert policy: " + err.Error())
	}
	policy.NotifyOnUpdate = policy.NotifyOnUpdate || cfg.GetNotifyOnUpdate()

	// Object storage for rack snapshots (optional)
	var storageSvc *objstore.Service
	if cfg.IsStorageEnabled() {
		storageSvc, err = objstore.New(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure snapshot bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure snapshot bucket exists", "error", err)
			panic("failed to ensure snapshot bucket exists: " + err.Error())
		}
		log.Info("storage service initialized", "bucket", cfg.GetStorageBucket())
	} else {
		log.Warn("STORAGE_ENDPOINT not configured; snapshot uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	inventoryModule := inventory.NewModule(pool, cfg.GetPublicBaseURL(), val, log)
	staffingModule := staffing.NewModule(pool, eventBus, val, log)
	alertsModule := alerts.NewModule(pool, policy, storageSvc, val, log)
	notificationModule := notification.NewModule(pool, cfg.GetPublicBaseURL(), eventBus, log)
	defer notificationModule.Close()

	// Anti-corruption adapters: the alert engine only depends on its own
	// collaborator ports, never on sibling modules directly.
	staffDirectory := adapters.NewStaffingDirectory(staffingModule.Service())
	alertsModule.Service().SetCatalog(adapters.NewCatalogReader(inventoryModule.Service()))
	alertsModule.Service().SetAssignments(staffDirectory)
	alertsModule.Service().SetDirectory(staffDirectory)
	alertsModule.Service().SetDispatcher(adapters.NewAlertDispatcher(notificationModule.Service()))
	alertsModule.Service().SetEventBus(eventBus)
	notificationModule.Service().SetEmailDirectory(staffDirectory)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			alertsModule,
			inventoryModule,
			staffingModule,
			notificationModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port)
		srvErr <- engine.Run(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
