// Package seed creates the demo accounts used in development.
package seed

import (
	"context"
	"errors"

	"remit/internal/models"
	"remit/internal/repositories"
	"remit/internal/services/auth"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DemoAccount is one account to seed.
type DemoAccount struct {
	Name    string
	Email   string
	Balance decimal.Decimal
}

// DemoAccounts are the accounts created by Run.
var DemoAccounts = []DemoAccount{
	{Name: "John Doe", Email: "john@example.com", Balance: decimal.NewFromInt(10000)},
	{Name: "Jane Smith", Email: "jane@example.com", Balance: decimal.NewFromInt(5000)},
	{Name: "Bob Johnson", Email: "bob@example.com", Balance: decimal.NewFromInt(2500)},
	{Name: "Alice Williams", Email: "alice@example.com", Balance: decimal.NewFromInt(1000)},
	{Name: "Charlie Brown", Email: "charlie@example.com", Balance: decimal.NewFromInt(500)},
}

// AccountCreator is the part of the ledger seeding writes to.
type AccountCreator interface {
	CreateAccount(ctx context.Context, account *models.Account) error
}

// Run creates every account in accounts with the same password. Accounts
// that already exist are left untouched. It returns how many were created.
func Run(ctx context.Context, store AccountCreator, accounts []DemoAccount, password string, logger *zap.Logger) (int, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, demo := range accounts {
		account := &models.Account{
			Name:     demo.Name,
			Email:    demo.Email,
			Password: hashed,
			Balance:  demo.Balance,
		}
		err := store.CreateAccount(ctx, account)
		if errors.Is(err, repositories.ErrDuplicateAccount) {
			logger.Info("account already exists", zap.String("email", demo.Email))
			continue
		}
		if err != nil {
			return created, err
		}
		created++
		logger.Info("account created",
			zap.Uint("id", account.ID),
			zap.String("email", demo.Email),
			zap.Stringer("balance", demo.Balance),
		)
	}
	return created, nil
}
