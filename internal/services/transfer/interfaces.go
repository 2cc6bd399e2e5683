package transfer

import (
	"context"
	"remit/internal/repositories"
	"remit/internal/services/notification"

	"github.com/shopspring/decimal"
)

// LedgerStore is the one capability the engine needs from persistence: an
// atomic unit of work with row locks.
type LedgerStore interface {
	ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerTx) error) error
}

// FeeCalculator prices a transfer.
type FeeCalculator interface {
	Commission(amount decimal.Decimal) decimal.Decimal
	TotalDebit(amount decimal.Decimal) decimal.Decimal
}

// Notifier is told about every committed transfer.
type Notifier = notification.Dispatcher

// Service moves funds between two accounts.
type Service interface {
	// Transfer debits amount plus commission from the sender and credits
	// amount to the receiver, atomically.
	Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal) (*Result, error)

	// Quote prices a transfer without touching any account.
	Quote(amount decimal.Decimal) (*Quote, error)
}
