package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/token"
	_ "github.com/gatewarden/gatewarden/testing"
)

func newSigner(t *testing.T) *token.HMACSigner {
	t.Helper()
	signer, err := token.NewHMACSigner("test-secret")
	require.NoError(t, err)
	return signer
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	signer := newSigner(t)

	claims := token.NewClaims(token.ClaimsOptions{
		UserID:   "7d00b3a0-4d4f-4e3b-96b7-37e2f1aa61c0",
		Role:     "editor",
		Username: "alice",
		Email:    "alice@example.com",
		Type:     token.TypeAccess,
		TTL:      15 * time.Minute,
	})

	raw, err := signer.Issue(claims)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	parsed, err := signer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "7d00b3a0-4d4f-4e3b-96b7-37e2f1aa61c0", parsed.UserID())
	assert.Equal(t, "editor", parsed.Role)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, "alice@example.com", parsed.Email)
	assert.Equal(t, token.TypeAccess, parsed.Type)
	assert.NotEmpty(t, parsed.ID)
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := newSigner(t)

	claims := token.NewClaims(token.ClaimsOptions{
		UserID:   "7d00b3a0-4d4f-4e3b-96b7-37e2f1aa61c0",
		Username: "alice",
		Type:     token.TypeAccess,
		TTL:      time.Minute,
		IssuedAt: time.Now().Add(-time.Hour),
	})

	raw, err := signer.Issue(claims)
	require.NoError(t, err)

	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer := newSigner(t)

	claims := token.NewClaims(token.ClaimsOptions{
		UserID:   "7d00b3a0-4d4f-4e3b-96b7-37e2f1aa61c0",
		Username: "alice",
		Type:     token.TypeAccess,
		TTL:      time.Minute,
	})
	raw, err := signer.Issue(claims)
	require.NoError(t, err)

	_, err = signer.Verify(raw + "x")
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	signer := newSigner(t)
	other, err := token.NewHMACSigner("another-secret")
	require.NoError(t, err)

	claims := token.NewClaims(token.ClaimsOptions{
		UserID:   "7d00b3a0-4d4f-4e3b-96b7-37e2f1aa61c0",
		Username: "alice",
		Type:     token.TypeRefresh,
		TTL:      time.Minute,
	})
	raw, err := other.Issue(claims)
	require.NoError(t, err)

	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestFreshClaimsGetDistinctIDs(t *testing.T) {
	a := token.NewClaims(token.ClaimsOptions{UserID: "u", Type: token.TypeAccess, TTL: time.Minute})
	b := token.NewClaims(token.ClaimsOptions{UserID: "u", Type: token.TypeRefresh, TTL: time.Minute})
	assert.NotEqual(t, a.ID, b.ID)
}
