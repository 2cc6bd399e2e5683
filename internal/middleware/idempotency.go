package middleware

import (
	"context"
	"errors"

	apperrors "remit/internal/errors"
	"remit/internal/repositories/cache"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore is the replay store behind Idempotency.
type IdempotencyStore interface {
	Claim(ctx context.Context, accountID uint, key string) (*cache.StoredResponse, error)
	Complete(ctx context.Context, accountID uint, key string, resp cache.StoredResponse) error
	Release(ctx context.Context, accountID uint, key string) error
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// It must run after AuthMiddleware. Server errors are not kept, so the
// client can retry them with the same key.
func Idempotency(store IdempotencyStore, logger *zap.Logger) fiber.Handler {
	logger = logger.Named("idempotency")

	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		claims, ok := Claims(c)
		if !ok {
			return response.Unauthorized(c)
		}
		accountID := claims.AccountID

		stored, err := store.Claim(c.Context(), accountID, key)
		if errors.Is(err, cache.ErrRequestInProgress) {
			return response.DomainError(c, apperrors.ErrDuplicateRequest)
		}
		if err != nil {
			logger.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
			return response.DomainError(c, apperrors.ErrStoreUnavailable)
		}
		if stored != nil {
			logger.Info("replaying stored response", zap.String("key", key), zap.Uint("account_id", accountID))
			c.Set("X-Idempotency-Hit", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(stored.Status).Send(stored.Body)
		}

		err = c.Next()
		status := c.Response().StatusCode()
		if err != nil || status >= fiber.StatusInternalServerError {
			if relErr := store.Release(c.Context(), accountID, key); relErr != nil {
				logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
			return err
		}

		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Complete(c.Context(), accountID, key, cache.StoredResponse{Status: status, Body: body}); err != nil {
			logger.Error("failed to save idempotency key", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}
