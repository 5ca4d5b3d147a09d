package shared

import (
	"context"

	"github.com/gatewarden/gatewarden/internal/token"
)

type claimsContextKey struct{}

// ContextWithClaims stores verified access token claims in context.
func ContextWithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts access token claims from context.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims
}
