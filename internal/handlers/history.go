package handlers

import (
	"errors"

	"remit/internal/middleware"
	"remit/internal/repositories"
	"remit/internal/services/history"
	"remit/internal/utils/pagination"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	service history.Service
	logger  *zap.Logger
}

func NewHistoryHandler(s history.Service, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{service: s, logger: logger.Named("history_handler")}
}

// History handles GET /api/transactions: the caller's balance and a page of
// their transfers, newest first.
func (h *HistoryHandler) History(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	statement, err := h.service.Statement(c.Context(), claims.AccountID, p.Limit, p.Offset)
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return response.Unauthorized(c)
	}
	if err != nil {
		h.logger.Error("failed to load history", zap.Uint("account_id", claims.AccountID), zap.Error(err))
		return response.ServerError(c, "failed to load transaction history")
	}

	p.Total = statement.Total
	return c.JSON(fiber.Map{
		"balance":      statement.Balance,
		"transactions": pagination.Response(p, statement.Transactions),
	})
}
