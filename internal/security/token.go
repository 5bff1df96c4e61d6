// Package security issues and verifies the bearer tokens that bind API
// requests to a user account.
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretMissing = errors.New("token secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenManager signs session tokens with a shared HS256 secret. TTL
// defaults to 7 days when zero.
type TokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func (m TokenManager) Issue(userID string) (string, error) {
	if len(m.Secret) == 0 {
		return "", ErrSecretMissing
	}
	ttl := m.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

// Parse verifies the signature and expiry and returns the user id the
// token was issued for.
func (m TokenManager) Parse(tokenStr string) (string, error) {
	if len(m.Secret) == 0 {
		return "", ErrSecretMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.Secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if token == nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
