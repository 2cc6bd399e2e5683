// Command seed creates the demo accounts in the configured Postgres database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"remit/internal/config"
	applog "remit/internal/logger"
	"remit/internal/repositories"
	"remit/internal/seed"

	"go.uber.org/zap"
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

	password := config.GetEnv("SEED_PASSWORD", "password")

	db, err := repositories.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repositories.CloseDB(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()

	created, err := seed.Run(context.Background(), repositories.NewLedgerRepository(db), seed.DemoAccounts, password, log)
	if err != nil {
		log.Error("seeding failed", zap.Error(err))
		return
	}
	log.Info("seeding finished", zap.Int("created", created), zap.Int("total", len(seed.DemoAccounts)))
}
