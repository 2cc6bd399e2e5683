package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"remit/internal/handlers"
	"remit/internal/models"
	"remit/internal/repositories"
	"remit/internal/repositories/cache"
	"remit/internal/services/auth"
	"remit/internal/services/commission"
	"remit/internal/services/history"
	"remit/internal/services/transfer"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app  *fiber.App
	repo *repositories.MemoryLedgerRepository
	ids  map[string]uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	repo := repositories.NewMemoryLedgerRepository()

	hashed, err := auth.HashPassword("password")
	require.NoError(t, err)
	ids := map[string]uint{}
	for _, seed := range []struct{ name, balance string }{
		{"alice", "1000.00"}, {"bob", "500.00"}, {"carol", "50.00"},
	} {
		account := &models.Account{
			Name:     seed.name,
			Email:    seed.name + "@example.com",
			Password: hashed,
			Balance:  decimal.RequireFromString(seed.balance),
		}
		require.NoError(t, repo.CreateAccount(context.Background(), account))
		ids[seed.name] = account.ID
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	cacheSvc := cache.NewCacheService(client, time.Hour)

	app := fiber.New()
	SetupRoutes(app, Deps{
		Transfers:   transfer.NewService(repo, commission.NewCalculator(decimal.Zero), nil, transfer.Config{}, nil, logger),
		History:     history.NewService(repo),
		Auth:        auth.NewService(repo, "test-secret", logger),
		Accounts:    repo,
		Idempotency: cache.NewIdempotencyStore(cacheSvc, time.Hour, time.Minute),
		HealthChecks: map[string]handlers.Pinger{
			"database": repo,
			"redis":    handlers.PingFunc(cacheSvc.HealthCheck),
		},
		Logger: logger,
	})
	return &testServer{app: app, repo: repo, ids: ids}
}

func (s *testServer) do(t *testing.T, method, path, token, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, name string) string {
	t.Helper()
	status, body := s.do(t, "POST", "/api/login", "", `{"email":"`+name+`@example.com","password":"password"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	return body["access_token"].(string)
}

func (s *testServer) balance(t *testing.T, name string) string {
	t.Helper()
	account, err := s.repo.GetAccount(context.Background(), s.ids[name])
	require.NoError(t, err)
	return account.Balance.StringFixed(2)
}

func TestTransferAndHistory(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	status, body := s.do(t, "POST", "/api/transactions", token, `{"receiver_id": 2, "amount": 100.00}`)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "Transfer completed successfully", body["message"])
	assert.Equal(t, "898.5", body["new_balance"])

	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "1.5", tx["commission_fee"])
	assert.Equal(t, "sent", tx["direction"])
	assert.Equal(t, "completed", tx["status"])
	assert.Equal(t, "bob", tx["receiver"].(map[string]any)["name"])
	assert.NotContains(t, tx["receiver"], "balance")

	assert.Equal(t, "898.50", s.balance(t, "alice"))
	assert.Equal(t, "600.00", s.balance(t, "bob"))

	status, body = s.do(t, "GET", "/api/transactions", token, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "898.5", body["balance"])
	page := body["transactions"].(map[string]any)
	assert.Len(t, page["data"], 1)
	meta := page["meta"].(map[string]any)
	assert.EqualValues(t, 50, meta["per_page"])
	assert.EqualValues(t, 1, meta["total_items"])

	bobStatus, bobBody := s.do(t, "GET", "/api/transactions", s.login(t, "bob"), "")
	require.Equal(t, fiber.StatusOK, bobStatus)
	entry := bobBody["transactions"].(map[string]any)["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "received", entry["direction"])
	assert.Equal(t, "0", entry["commission_fee"])
}

func TestTransferValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	tests := []struct {
		name    string
		body    string
		field   string
		code    string
		message string
	}{
		{"missing receiver", `{"amount": 10}`, "receiver_id", "INVALID_REQUEST", "Please specify a receiver for this transaction."},
		{"unknown receiver", `{"receiver_id": 99, "amount": 10}`, "receiver_id", "ACCOUNT_NOT_FOUND", "The specified receiver does not exist."},
		{"self transfer", `{"receiver_id": 1, "amount": 10}`, "receiver_id", "SELF_TRANSFER", "You cannot send money to yourself."},
		{"missing amount", `{"receiver_id": 2}`, "amount", "INVALID_AMOUNT", "Please specify an amount to transfer."},
		{"non numeric amount", `{"receiver_id": 2, "amount": "ten"}`, "amount", "INVALID_AMOUNT", "The amount must be a valid number."},
		{"below minimum", `{"receiver_id": 2, "amount": 0.001}`, "amount", "INVALID_AMOUNT", "The amount must be at least 0.01."},
		{"above maximum", `{"receiver_id": 2, "amount": 1000000000}`, "amount", "INVALID_AMOUNT", "The amount must not exceed 999999999.99."},
		{"too precise", `{"receiver_id": 2, "amount": 1.005}`, "amount", "INVALID_AMOUNT", "The amount must have at most 2 decimal places."},
		{"insufficient", `{"receiver_id": 2, "amount": 1000}`, "amount", "INSUFFICIENT_FUNDS", "Insufficient balance. You need 1015.00 (including 15.0000 commission) but have 1000.00."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, "POST", "/api/transactions", token, tt.body)
			require.Equal(t, fiber.StatusUnprocessableEntity, status, body)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
			fields := body["errors"].(map[string]any)
			assert.Equal(t, []any{tt.message}, fields[tt.field])
		})
	}

	assert.Equal(t, "1000.00", s.balance(t, "alice"))
}

func TestTransferInsufficientFundsScenario(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "carol")

	status, body := s.do(t, "POST", "/api/transactions", token, `{"receiver_id": 1, "amount": 50}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", body["code"])
	assert.Equal(t, "Insufficient balance. You need 50.75 (including 0.7500 commission) but have 50.00.", body["message"])
	assert.Equal(t, "50.00", s.balance(t, "carol"))
}

func TestTransferRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, "POST", "/api/transactions", "", `{"receiver_id": 2, "amount": 10}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, "GET", "/api/transactions", "garbage", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, "POST", "/api/login", "", `{"email":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, "POST", "/api/login", "", `{"email":"alice@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCurrentAccount(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	status, body := s.do(t, "GET", "/api/users", token, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, s.ids["alice"], body["id"])
	assert.Equal(t, "alice", body["name"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "1000", body["balance"])
	assert.NotContains(t, body, "password")

	status, _ = s.do(t, "GET", "/api/users", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do(t, "GET", "/api/users", "garbage", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

type missingAccounts struct{}

func (missingAccounts) GetAccount(context.Context, uint) (*models.Account, error) {
	return nil, repositories.ErrAccountNotFound
}

func TestCurrentAccountDeleted(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")

	app := fiber.New()
	SetupRoutes(app, Deps{
		Auth:     auth.NewService(s.repo, "test-secret", zap.NewNop()),
		Accounts: missingAccounts{},
		Logger:   zap.NewNop(),
	})
	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTransferIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")
	body := `{"receiver_id": 2, "amount": 100}`

	first, firstBody := s.do(t, "POST", "/api/transactions", token, body, "Idempotency-Key", "retry-1")
	require.Equal(t, fiber.StatusCreated, first)

	second, secondBody := s.do(t, "POST", "/api/transactions", token, body, "Idempotency-Key", "retry-1")
	require.Equal(t, fiber.StatusCreated, second)
	assert.Equal(t, firstBody["transaction"], secondBody["transaction"])

	assert.Equal(t, "898.50", s.balance(t, "alice"))
	assert.Equal(t, "600.00", s.balance(t, "bob"))
}

func TestTransferStoreFailure(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "alice")
	s.repo.FailCommitsWith(func() error { return errors.New("connection reset") })

	status, body := s.do(t, "POST", "/api/transactions", token, `{"receiver_id": 2, "amount": 100}`, "Idempotency-Key", "k")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "STORE_UNAVAILABLE", body["code"])

	// the failed attempt did not pin the key
	s.repo.FailCommitsWith(nil)
	status, _ = s.do(t, "POST", "/api/transactions", token, `{"receiver_id": 2, "amount": 100}`, "Idempotency-Key", "k")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "898.50", s.balance(t, "alice"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, "GET", "/health", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	app := fiber.New()
	SetupRoutes(app, Deps{
		Auth: auth.NewService(s.repo, "x", zap.NewNop()),
		HealthChecks: map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(context.Context) error { return errors.New("down") }),
		},
		Logger: zap.NewNop(),
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
