package repositories

import (
	"context"
	"errors"
	"remit/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrNegativeBalance  = errors.New("balance cannot be negative")
)

// LedgerTx is the unit of work handed to ExecuteInTransaction. Locks taken
// through it are held until the surrounding transaction commits or rolls back.
type LedgerTx interface {
	// LockAccount takes an exclusive row lock on the account and returns its
	// current state. It blocks while another unit of work holds the lock and
	// gives up when ctx is done.
	LockAccount(ctx context.Context, id uint) (*models.Account, error)

	// UpdateBalance stages a new balance for an account locked in this unit.
	UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error

	// CreateTransferRecord stages a ledger record, filling ID and timestamps.
	CreateTransferRecord(ctx context.Context, record *models.TransferRecord) error
}

// LedgerRepository is the persistence boundary for accounts and transfer records.
type LedgerRepository interface {
	// ExecuteInTransaction runs fn in one atomic unit of work. A nil return
	// commits, any error rolls everything back and is returned unchanged.
	ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error

	// Read side, used outside the transfer engine
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	ListTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.TransferRecord, int64, error)
	Ping(ctx context.Context) error
}
