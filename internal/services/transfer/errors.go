package transfer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer errors. All five reach the caller synchronously. Only
// ErrStoreFailure is worth retrying unchanged; the others are input errors.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStoreFailure      = errors.New("ledger store failure")
)

// AmountError says why an amount was refused.
type AmountError struct {
	Reason string
}

func (e *AmountError) Error() string {
	return "invalid amount: " + e.Reason
}

func (e *AmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// InsufficientFundsError reports what the transfer needed and what the
// sender had when its row was locked.
type InsufficientFundsError struct {
	Required   decimal.Decimal
	Commission decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance. Required: %s (including commission: %s), Available: %s",
		e.Required.StringFixed(2), e.Commission.StringFixed(4), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// AccountNotFoundError names the missing account and which side it was on.
type AccountNotFoundError struct {
	AccountID uint
	Role      string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("%s account %d not found", e.Role, e.AccountID)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
