// Package auth verifies the caller identity carried in bearer tokens.
// Issuing credentials (login, registration) is an external concern; the
// tracker only needs to resolve a token to an owning user id.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims is the token payload. The user id claim name matches what the
// auth service issues.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.StandardClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Issue creates a signed token for the given user. Used by tests and tooling;
// production tokens come from the auth service sharing the same secret.
func (m *TokenManager) Issue(userID uint, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued for.
func (m *TokenManager) Verify(tokenString string) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, fmt.Errorf("invalid token")
	}
	return claims.UserID, nil
}

// BearerToken extracts the raw token from an Authorization header value.
// Returns an empty string when the header carries no bearer token.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
