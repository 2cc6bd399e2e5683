package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "remit/internal/errors"
	"remit/internal/middleware"
	"remit/internal/models"
	"remit/internal/repositories"
	"remit/internal/services/history"
	"remit/internal/services/transfer"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountReader looks up accounts for request validation.
type AccountReader interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
}

// TransferHandler exposes the transfer endpoint.
type TransferHandler struct {
	service  transfer.Service
	accounts AccountReader
	logger   *zap.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service, accounts AccountReader, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{service: s, accounts: accounts, logger: logger.Named("transfer_handler")}
}

type transferRequest struct {
	ReceiverID json.RawMessage `json:"receiver_id"`
	Amount     json.RawMessage `json:"amount"`
}

// fieldError is a request validation failure tied to one input field.
type fieldError struct {
	field   string
	code    string
	message string
}

// Transfer handles POST /api/transactions.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	receiverID, amount, ferr := h.validate(c.Context(), claims.AccountID, req)
	if ferr != nil {
		return response.ValidationError(c, ferr.code, ferr.field, ferr.message)
	}

	result, err := h.service.Transfer(c.Context(), claims.AccountID, receiverID, amount)
	if err != nil {
		return h.transferError(c, err)
	}

	return response.Created(c, fiber.Map{
		"message":     "Transfer completed successfully",
		"transaction": history.NewEntry(claims.AccountID, withParties(result)),
		"new_balance": result.Sender.Balance,
	})
}

// validate runs the request checks in field order. The funds check here is
// advisory; the engine repeats it under lock.
func (h *TransferHandler) validate(ctx context.Context, senderID uint, req transferRequest) (uint, decimal.Decimal, *fieldError) {
	receiverID, ferr := parseReceiverID(req.ReceiverID)
	if ferr != nil {
		return 0, decimal.Zero, ferr
	}
	amount, ferr := parseAmount(req.Amount)
	if ferr != nil {
		return 0, decimal.Zero, ferr
	}

	if receiverID == senderID {
		return 0, decimal.Zero, selfTransferError()
	}
	if _, err := h.accounts.GetAccount(ctx, receiverID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return 0, decimal.Zero, receiverMissingError()
		}
		// leave store trouble to the engine, which reports it properly
		h.logger.Warn("receiver lookup failed", zap.Uint("receiver_id", receiverID), zap.Error(err))
	}

	quote, err := h.service.Quote(amount)
	if err != nil {
		return 0, decimal.Zero, amountError(err)
	}

	sender, err := h.accounts.GetAccount(ctx, senderID)
	if err == nil && sender.Balance.LessThan(quote.TotalDebit) {
		return 0, decimal.Zero, insufficientError(&transfer.InsufficientFundsError{
			Required:   quote.TotalDebit,
			Commission: quote.Commission,
			Available:  sender.Balance,
		})
	}
	return receiverID, amount, nil
}

func (h *TransferHandler) transferError(c *fiber.Ctx, err error) error {
	var funds *transfer.InsufficientFundsError
	var notFound *transfer.AccountNotFoundError

	switch {
	case errors.As(err, &funds):
		ferr := insufficientError(funds)
		return response.ValidationError(c, ferr.code, ferr.field, ferr.message)
	case errors.As(err, &notFound) && notFound.Role == "sender":
		return response.Unauthorized(c)
	case errors.Is(err, transfer.ErrAccountNotFound):
		ferr := receiverMissingError()
		return response.ValidationError(c, ferr.code, ferr.field, ferr.message)
	case errors.Is(err, transfer.ErrSelfTransfer):
		ferr := selfTransferError()
		return response.ValidationError(c, ferr.code, ferr.field, ferr.message)
	case errors.Is(err, transfer.ErrInvalidAmount):
		ferr := amountError(err)
		return response.ValidationError(c, ferr.code, ferr.field, ferr.message)
	case errors.Is(err, transfer.ErrStoreFailure):
		h.logger.Error("transfer failed", zap.Error(err))
		return response.DomainError(c, apperrors.ErrStoreUnavailable)
	default:
		h.logger.Error("unexpected transfer error", zap.Error(err))
		return response.DomainError(c, apperrors.ErrInternal)
	}
}

func parseReceiverID(raw json.RawMessage) (uint, *fieldError) {
	value := strings.Trim(string(raw), `"`)
	if value == "" || value == "null" {
		return 0, &fieldError{"receiver_id", apperrors.ErrInvalidRequest.Code, "Please specify a receiver for this transaction."}
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, &fieldError{"receiver_id", apperrors.ErrInvalidRequest.Code, "The receiver id must be an integer."}
	}
	return uint(id), nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, *fieldError) {
	value := strings.Trim(string(raw), `"`)
	if value == "" || value == "null" {
		return decimal.Zero, &fieldError{"amount", apperrors.ErrInvalidAmount.Code, "Please specify an amount to transfer."}
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &fieldError{"amount", apperrors.ErrInvalidAmount.Code, "The amount must be a valid number."}
	}
	return amount, nil
}

func amountError(err error) *fieldError {
	message := "The amount is invalid."
	var amountErr *transfer.AmountError
	if errors.As(err, &amountErr) {
		message = "The amount " + amountErr.Reason + "."
	}
	return &fieldError{"amount", apperrors.ErrInvalidAmount.Code, message}
}

func insufficientError(e *transfer.InsufficientFundsError) *fieldError {
	return &fieldError{"amount", apperrors.ErrInsufficientFunds.Code, fmt.Sprintf(
		"Insufficient balance. You need %s (including %s commission) but have %s.",
		e.Required.StringFixed(2), e.Commission.StringFixed(4), e.Available.StringFixed(2))}
}

func selfTransferError() *fieldError {
	return &fieldError{"receiver_id", apperrors.ErrSelfTransfer.Code, "You cannot send money to yourself."}
}

func receiverMissingError() *fieldError {
	return &fieldError{"receiver_id", apperrors.ErrAccountNotFound.Code, "The specified receiver does not exist."}
}

func withParties(result *transfer.Result) *models.TransferRecord {
	rec := *result.Record
	rec.Sender = result.Sender
	rec.Receiver = result.Receiver
	return &rec
}
