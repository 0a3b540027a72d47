package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	IsStaff bool
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email,omitempty"`
	IsStaff bool      `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// BasketTokenClaims carries the anonymous basket reference stored in the basket cookie.
type BasketTokenClaims struct {
	BasketID uint64 `json:"basket_id"`
	jwt.RegisteredClaims
}
