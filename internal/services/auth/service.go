// Package auth checks account credentials and issues access tokens.
package auth

import (
	"context"
	"errors"

	"remit/internal/models"
	"remit/internal/repositories"
	"remit/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountFinder is the slice of the ledger the login flow reads.
type AccountFinder interface {
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

type Service interface {
	Login(ctx context.Context, email, password string) (*models.Account, string, error)
	Authenticate(token string) (*models.AccountClaims, error)
}

type service struct {
	accounts AccountFinder
	secret   string
	logger   *zap.Logger
}

func NewService(accounts AccountFinder, jwtSecret string, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		accounts: accounts,
		secret:   jwtSecret,
		logger:   logger.Named("auth"),
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.Account, string, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, repositories.ErrAccountNotFound) {
		s.logger.Info("login failed: unknown email", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: incorrect password", zap.Uint("account_id", account.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.secret, account.ID, account.Email)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *service) Authenticate(token string) (*models.AccountClaims, error) {
	return utils.ParseToken(s.secret, token)
}

// HashPassword hashes a plain password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
