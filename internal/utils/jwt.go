package utils

import (
	"errors"
	"strconv"
	"time"

	"remit/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "remit-api"
	// AccessTokenTTL is how long a login token stays valid.
	AccessTokenTTL = time.Hour
)

var ErrMissingSecret = errors.New("JWT secret not configured")

// GenerateToken signs an access token for the given account.
func GenerateToken(secret string, accountID uint, email string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := models.AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(accountID), 10),
		},
		AccountID: accountID,
		Email:     email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT token string.
// It returns the claims if valid, or an error if something is wrong.
func ParseToken(secret, tokenStr string) (*models.AccountClaims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.AccountClaims)
	if !ok || !token.Valid || claims.AccountID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
