package errors

import "net/http"

var (
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient balance",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrSelfTransfer = &DomainError{
		Code:    "SELF_TRANSFER",
		Message: "you cannot send money to yourself",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "the specified receiver does not exist",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrStoreUnavailable = &DomainError{
		Code:    "STORE_UNAVAILABLE",
		Message: "transfer could not be completed, please retry",
		Status:  http.StatusServiceUnavailable,
	}
	ErrDuplicateRequest = &DomainError{
		Code:    "REQUEST_IN_PROGRESS",
		Message: "a request with this idempotency key is already being processed",
		Status:  http.StatusConflict,
	}
)
