package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the session token payload. Role is omitted when the user has none.
type Claims struct {
	Role     string `json:"role,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Type     string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// ClaimsOptions configures creation of session token claims.
type ClaimsOptions struct {
	UserID   string
	Role     string
	Username string
	Email    string
	Type     string
	TTL      time.Duration
	IssuedAt time.Time
}

// NewClaims constructs claims with a fresh JTI and expiry derived from TTL.
func NewClaims(opts ClaimsOptions) *Claims {
	now := opts.IssuedAt
	if now.IsZero() {
		now = time.Now().UTC()
	} else {
		now = now.UTC()
	}

	return &Claims{
		Role:     opts.Role,
		Username: opts.Username,
		Email:    opts.Email,
		Type:     opts.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
			ID:        uuid.NewString(),
		},
	}
}
