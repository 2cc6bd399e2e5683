package models

import "github.com/golang-jwt/jwt/v5"

// AccountClaims is the JWT payload identifying the authenticated account holder.
type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
}
