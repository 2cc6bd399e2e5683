package transfer

import (
	"remit/internal/models"
	"time"

	"github.com/shopspring/decimal"
)

// Result is a committed transfer: the ledger record plus both accounts as the
// transfer left them.
type Result struct {
	Record   *models.TransferRecord
	Sender   *models.Account
	Receiver *models.Account
}

// Quote is the price of a transfer.
type Quote struct {
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission_fee"`
	TotalDebit decimal.Decimal `json:"total_debit"`
}

// Config tunes the engine. Zero values take the defaults below.
type Config struct {
	// Timeout bounds a whole transfer, lock waits included.
	Timeout time.Duration
	// NotifyTimeout bounds the post-commit notification.
	NotifyTimeout time.Duration
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
}

const (
	DefaultTimeout       = 30 * time.Second
	DefaultNotifyTimeout = 5 * time.Second
	// AmountPlaces is the precision transfer amounts are accepted at.
	AmountPlaces = 2
)

var (
	DefaultMinAmount = decimal.RequireFromString("0.01")
	DefaultMaxAmount = decimal.RequireFromString("999999999.99")
)

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.NotifyTimeout == 0 {
		c.NotifyTimeout = DefaultNotifyTimeout
	}
	if c.MinAmount.IsZero() {
		c.MinAmount = DefaultMinAmount
	}
	if c.MaxAmount.IsZero() {
		c.MaxAmount = DefaultMaxAmount
	}
	return c
}
