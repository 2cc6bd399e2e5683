// Package routes defines the API routing configuration.
// It wires handlers to paths and puts authentication and idempotency in
// front of the routes that need them.
package routes

import (
	"remit/internal/handlers"
	"remit/internal/middleware"
	"remit/internal/services/auth"
	"remit/internal/services/history"
	"remit/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Deps are the services the routes are served by.
type Deps struct {
	Transfers    transfer.Service
	History      history.Service
	Auth         auth.Service
	Accounts     handlers.AccountReader
	Idempotency  middleware.IdempotencyStore
	HealthChecks map[string]handlers.Pinger
	Logger       *zap.Logger
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Deps) {
	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, deps.Logger)

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Logger)
	transferHandler := handlers.NewTransferHandler(deps.Transfers, deps.Accounts, deps.Logger)
	historyHandler := handlers.NewHistoryHandler(deps.History, deps.Logger)
	accountHandler := handlers.NewAccountHandler(deps.Accounts, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	api.Post("/login", authHandler.Login)
	api.Get("/users", authMiddleware.Handler, accountHandler.Me)

	api.Get("/transactions", authMiddleware.Handler, historyHandler.History)

	createTransfer := []fiber.Handler{authMiddleware.Handler}
	if deps.Idempotency != nil {
		createTransfer = append(createTransfer, middleware.Idempotency(deps.Idempotency, deps.Logger))
	}
	createTransfer = append(createTransfer, transferHandler.Transfer)
	api.Post("/transactions", createTransfer...)
}
