// Package middleware provides HTTP middleware components for the application.
// It includes authentication and idempotent request replay for the fiber
// web framework.
package middleware

import (
	"strings"

	"remit/internal/models"
	"remit/internal/services/auth"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware handles JWT token validation and account authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the account claims to the request context.
type AuthMiddleware struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAuthMiddleware(authService auth.Service, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger.Named("auth"),
	}
}

// Handler rejects requests without a valid Bearer token.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		m.logger.Debug("invalid authorization format", zap.String("path", c.Path()))
		return response.Unauthorized(c)
	}

	claims, err := m.authService.Authenticate(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.logger.Debug("token validation failed", zap.String("path", c.Path()), zap.Error(err))
		return response.Unauthorized(c)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// Claims returns the authenticated account's claims set by Handler.
func Claims(c *fiber.Ctx) (*models.AccountClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*models.AccountClaims)
	return claims, ok && claims != nil
}
