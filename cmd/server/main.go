// Package main is the entry point for the transfer API.
// It loads configuration, wires the ledger store, notifiers and services,
// and serves HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remit/internal/config"
	"remit/internal/handlers"
	applog "remit/internal/logger"
	"remit/internal/repositories"
	"remit/internal/repositories/cache"
	"remit/internal/routes"
	"remit/internal/seed"
	"remit/internal/services/auth"
	"remit/internal/services/commission"
	"remit/internal/services/history"
	"remit/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	claimTTLMargin  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := config.LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	cfg := config.Load()

	log, err := applog.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, closeLedger, err := openLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cacheService := cache.NewCacheService(redisClient, cfg.IdempotencyTTL)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()
	if err := cacheService.HealthCheck(ctx); err != nil {
		return err
	}
	log.Info("redis connected", zap.String("host", cfg.RedisHost))
	defer cacheService.LogPoolStats(log, time.Minute)()

	notifier, closeNotifier, err := buildNotifier(cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	var metrics transfer.MetricsCollector = &transfer.NoopMetricsCollector{}
	if log.Core().Enabled(zap.DebugLevel) {
		metrics = transfer.NewLoggingMetricsCollector(log)
	}

	transferService := transfer.NewService(
		ledger,
		commission.NewCalculator(commission.DefaultRate),
		notifier,
		transfer.Config{Timeout: cfg.TransferTimeout},
		metrics,
		log,
	)

	deps := routes.Deps{
		Transfers: transferService,
		History:   history.NewService(ledger),
		Auth:      auth.NewService(ledger, cfg.JWTSecret, log),
		Accounts:  ledger,
		HealthChecks: map[string]handlers.Pinger{
			"database": ledger,
			"redis":    handlers.PingFunc(cacheService.HealthCheck),
		},
		Logger: log,
	}
	if cfg.IdempotencyTTL > 0 {
		deps.Idempotency = cache.NewIdempotencyStore(cacheService, cfg.IdempotencyTTL, cfg.TransferTimeout+claimTTLMargin)
	}

	app := newApp(cfg, log)
	routes.SetupRoutes(app, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "remit",
		ReadTimeout:  cfg.TransferTimeout + claimTTLMargin,
		WriteTimeout: cfg.TransferTimeout + claimTTLMargin,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods:     "GET,POST,HEAD,OPTIONS",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: applog.StdLog(log.Named("http")).Writer(),
	}))

	app.Use("/api/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	return app
}

// openLedger returns the configured store and a function releasing it.
func openLedger(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.LedgerRepository, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		repo := repositories.NewMemoryLedgerRepository()
		if _, err := seed.Run(ctx, repo, seed.DemoAccounts, "password", log.Named("seed")); err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory ledger, balances are lost on exit")
		return repo, func() {}, nil

	case "postgres":
		db, err := repositories.OpenDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		stopStats := logPoolStats(db, log)
		return repositories.NewLedgerRepository(db), func() {
			stopStats()
			if err := repositories.CloseDB(db); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// logPoolStats logs connection pool usage every minute until stopped.
func logPoolStats(db *gorm.DB, log *zap.Logger) func() {
	sqlDB, err := db.DB()
	if err != nil {
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				log.Debug("db pool stats",
					zap.Int("open", stats.OpenConnections),
					zap.Int("idle", stats.Idle),
					zap.Int("in_use", stats.InUse),
					zap.Int64("wait_count", stats.WaitCount),
					zap.Duration("wait_duration", stats.WaitDuration),
				)
			}
		}
	}()
	return func() { close(done) }
}
