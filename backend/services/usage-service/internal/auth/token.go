// Package auth mints bearer tokens in the format the auth provider issues, for operators and
// local development.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs HS256 tokens whose subject is the user id.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenIssuer returns configured issuer.
func NewTokenIssuer(secret, issuer string, expiresIn time.Duration) *TokenIssuer {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, expiresIn: expiresIn, now: time.Now}
}

// Issue signs a token for userID.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("token: user id is required")
	}
	if len(t.secret) == 0 {
		return "", errors.New("token: secret is required")
	}

	now := t.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}
