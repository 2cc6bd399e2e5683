package handlers

import (
	"errors"

	"remit/internal/middleware"
	"remit/internal/repositories"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts AccountReader
	logger   *zap.Logger
}

func NewAccountHandler(accounts AccountReader, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger.Named("account_handler")}
}

// Me handles GET /api/users: the authenticated account's profile.
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return response.Unauthorized(c)
	}

	account, err := h.accounts.GetAccount(c.Context(), claims.AccountID)
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return response.Unauthorized(c)
	}
	if err != nil {
		h.logger.Error("failed to load account", zap.Uint("account_id", claims.AccountID), zap.Error(err))
		return response.ServerError(c, "failed to load account")
	}

	return c.JSON(account)
}
