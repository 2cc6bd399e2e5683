package middleware

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"remit/internal/repositories"
	"remit/internal/repositories/cache"
	"remit/internal/services/auth"
	"remit/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func bearer(t *testing.T, accountID uint) string {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, accountID, "a@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func newAuth() *AuthMiddleware {
	svc := auth.NewService(repositories.NewMemoryLedgerRepository(), testSecret, zap.NewNop())
	return NewAuthMiddleware(svc, zap.NewNop())
}

func TestAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/me", newAuth().Handler, func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"account_id": claims.AccountID})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", bearer(t, 3), fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func newIdempotentApp(t *testing.T, handler fiber.Handler) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewIdempotencyStore(cache.NewCacheService(client, time.Hour), time.Hour, time.Minute)

	app := fiber.New()
	app.Post("/pay", newAuth().Handler, Idempotency(store, zap.NewNop()), handler)
	return app, mr
}

func post(t *testing.T, app *fiber.App, accountID uint, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/pay", nil)
	req.Header.Set("Authorization", bearer(t, accountID))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get("X-Idempotency-Hit")
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	var calls atomic.Int32
	app, _ := newIdempotentApp(t, func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": n})
	})

	status, body, hit := post(t, app, 1, "k1")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Empty(t, hit)

	status, body, hit = post(t, app, 1, "k1")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", hit)

	// another account, same key
	_, body, _ = post(t, app, 2, "k1")
	assert.JSONEq(t, `{"call":2}`, body)

	// no key, no replay
	_, body, _ = post(t, app, 1, "")
	assert.JSONEq(t, `{"call":3}`, body)
	assert.EqualValues(t, 3, calls.Load())
}

func TestIdempotency_ServerErrorsAreNotKept(t *testing.T) {
	var calls atomic.Int32
	app, _ := newIdempotentApp(t, func(c *fiber.Ctx) error {
		if calls.Add(1) == 1 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "retry"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
	})

	status, _, _ := post(t, app, 1, "k")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	status, _, hit := post(t, app, 1, "k")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Empty(t, hit)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotency_InProgressConflict(t *testing.T) {
	app, mr := newIdempotentApp(t, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	require.NoError(t, mr.Set("idempotency:1:busy", `{"status":0}`))

	status, body, _ := post(t, app, 1, "busy")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, body, "REQUEST_IN_PROGRESS")
}

func TestIdempotency_StoreDown(t *testing.T) {
	app, mr := newIdempotentApp(t, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	mr.Close()

	status, body, _ := post(t, app, 1, "k")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, body, "STORE_UNAVAILABLE")
}
