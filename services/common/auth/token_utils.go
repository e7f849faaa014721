package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrSecretMissing = errors.New("JWT secret not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrWrongType     = errors.New("invalid token type")
)

// Claims is the payload of every access and refresh token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	RoleID int    `json:"role_id"`
	ShopID string `json:"shop_id,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for claims valid for ttl.
func Sign(secret []byte, claims Claims, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, ErrSecretMissing
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	claims.Subject = claims.UserID

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAndValidateToken verifies tokenStr and returns its claims. If
// expectedType is non-empty, the "typ" claim must match it.
func ParseAndValidateToken(secret []byte, tokenStr, expectedType string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrSecretMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if expectedType != "" && claims.Type != expectedType {
		return nil, ErrWrongType
	}
	return claims, nil
}
