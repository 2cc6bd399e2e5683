package handlers

import (
	"errors"

	"remit/internal/services/auth"
	"remit/internal/utils"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.Named("auth_handler"),
	}
}

// Login handles POST /api/login and returns a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "email and password are required")
	}

	account, token, err := h.authService.Login(c.Context(), input.Email, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		return response.ServerError(c, "authentication failed")
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(utils.AccessTokenTTL.Seconds()),
		"account":      account,
	})
}
