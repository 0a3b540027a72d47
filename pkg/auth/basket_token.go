package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const basketTokenAudience = "basket"

// BasketTokenCodec signs and verifies the anonymous basket reference.
type BasketTokenCodec struct {
	secret   string
	issuer   string
	lifetime time.Duration
}

func NewBasketTokenCodec(secret, issuer string, lifetime time.Duration) (*BasketTokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("basket token secret required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("basket token lifetime must be positive")
	}
	return &BasketTokenCodec{secret: secret, issuer: issuer, lifetime: lifetime}, nil
}

// Lifetime reports how long a minted reference stays valid.
func (c *BasketTokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Sign produces a tamper-evident reference to basketID.
func (c *BasketTokenCodec) Sign(basketID uint64, now time.Time) (string, error) {
	if basketID == 0 {
		return "", fmt.Errorf("basket id is required")
	}
	claims := BasketTokenClaims{
		BasketID: basketID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatUint(basketID, 10),
			Audience:  jwt.ClaimStrings{basketTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(c.secret))
	if err != nil {
		return "", fmt.Errorf("signing basket token: %w", err)
	}
	return signed, nil
}

// Verify returns the basket id carried by token. A reference that fails
// signature, expiry or shape checks yields ok=false and must be treated as absent.
func (c *BasketTokenCodec) Verify(token string) (uint64, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithAudience(basketTokenAudience),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	claims := &BasketTokenClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, hmacKey(c.secret), opts...); err != nil {
		return 0, false
	}
	if claims.BasketID == 0 || claims.Subject != strconv.FormatUint(claims.BasketID, 10) {
		return 0, false
	}
	return claims.BasketID, true
}
