// Package token signs and verifies session tokens. The Signer interface keeps
// the signing primitive replaceable without touching authorization code.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid indicates a token that failed signature, structure or expiry checks.
var ErrInvalid = errors.New("token: invalid")

// Signer issues and verifies signed session tokens.
type Signer interface {
	Issue(claims *Claims) (string, error)
	Verify(raw string) (*Claims, error)
}

// HMACSigner implements Signer using HS256.
type HMACSigner struct {
	secret []byte
}

// NewHMACSigner constructs an HMACSigner from the shared secret.
func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret required")
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

// Issue signs the provided claims.
func (s *HMACSigner) Issue(claims *Claims) (string, error) {
	if claims == nil {
		return "", errors.New("token: claims required")
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify parses the token and validates signature and expiry.
func (s *HMACSigner) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return claims, nil
}

var _ Signer = (*HMACSigner)(nil)
