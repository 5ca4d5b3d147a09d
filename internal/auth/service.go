package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/token"
	"github.com/gatewarden/gatewarden/internal/users"
)

// Service issues, refreshes, validates and revokes session token pairs.
type Service struct {
	repo       Repository
	signer     token.Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, signer token.Signer, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{repo: repo, signer: signer, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Authenticate validates credentials and returns a fresh token pair. The
// identifier is tried as a username first, then as an email. Unknown user and
// wrong password fail identically; the active flag is only checked after the
// password verified, matching the reference order.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (TokenPair, error) {
	user, err := s.repo.FindUserByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, shared.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return TokenPair{}, shared.ErrAccountDisabled
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return TokenPair{}, fmt.Errorf("auth: update last login: %w", err)
	}

	access, err := s.signer.Issue(s.claimsFor(user, token.TypeAccess, s.accessTTL))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.signer.Issue(s.claimsFor(user, token.TypeRefresh, s.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh, IsSuperuser: user.IsSuperuser}, nil
}

// Refresh validates a refresh token and mints a new access token. A
// blacklisted or expired refresh token never becomes usable again.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := s.verifyRefresh(rawRefresh)
	if err != nil {
		return "", err
	}
	revoked, err := s.repo.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", shared.ErrInvalidToken
	}

	access := token.NewClaims(token.ClaimsOptions{
		UserID:   claims.Subject,
		Role:     claims.Role,
		Username: claims.Username,
		Email:    claims.Email,
		Type:     token.TypeAccess,
		TTL:      s.accessTTL,
	})
	return s.signer.Issue(access)
}

// Revoke adds the refresh token's identifier to the blacklist. Malformed or
// expired tokens are reported uniformly as invalid.
func (s *Service) Revoke(ctx context.Context, rawRefresh string) error {
	claims, err := s.verifyRefresh(rawRefresh)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return shared.ErrInvalidToken
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.repo.BlacklistToken(ctx, claims.ID, userID, expiresAt)
}

// ValidateAccess checks signature and expiry of an access token. Access
// tokens are not checked against the blacklist; a revoked refresh token's
// previously issued access tokens stay valid until their own expiry.
func (s *Service) ValidateAccess(rawAccess string) (*token.Claims, error) {
	claims, err := s.signer.Verify(rawAccess)
	if err != nil || claims.Type != token.TypeAccess {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) verifyRefresh(raw string) (*token.Claims, error) {
	claims, err := s.signer.Verify(raw)
	if err != nil || claims.Type != token.TypeRefresh {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) claimsFor(user users.User, tokenType string, ttl time.Duration) *token.Claims {
	role := ""
	if user.RoleID != nil {
		role = user.RoleName
	}
	return token.NewClaims(token.ClaimsOptions{
		UserID:   user.ID.String(),
		Role:     role,
		Username: user.Username,
		Email:    user.Email,
		Type:     tokenType,
		TTL:      ttl,
	})
}
