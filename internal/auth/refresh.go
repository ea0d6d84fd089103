package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/dealer-service/internal/repository"
)

const refreshTokenBytes = 32

// ErrRefreshTokenInvalid covers missing, expired, and rotated-away tokens.
var ErrRefreshTokenInvalid = errors.New("invalid refresh token")

// RefreshManager mints, validates, and rotates opaque refresh tokens.
type RefreshManager struct {
	repo repository.RefreshTokenRepository
	ttl  time.Duration
}

// NewRefreshManager creates a manager over the given token repository.
func NewRefreshManager(repo repository.RefreshTokenRepository, ttl time.Duration) *RefreshManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RefreshManager{repo: repo, ttl: ttl}
}

// Mint generates and stores a fresh refresh token for the user, replacing any
// previously issued one.
func (m *RefreshManager) Mint(ctx context.Context, userID string) (string, time.Time, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate refresh token: %w", err)
	}

	token := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(m.ttl)
	if err := m.repo.Save(ctx, &repository.StoredRefreshToken{
		Token:     token,
		UserID:    userID,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", time.Time{}, fmt.Errorf("store refresh token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate resolves the token to its owning user ID.
func (m *RefreshManager) Validate(ctx context.Context, token string) (string, error) {
	stored, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return "", ErrRefreshTokenInvalid
		}
		return "", err
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", ErrRefreshTokenInvalid
	}
	return stored.UserID, nil
}

// Revoke drops the token, ignoring unknown values.
func (m *RefreshManager) Revoke(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

// RevokeForUser drops whatever token the user currently holds.
func (m *RefreshManager) RevokeForUser(ctx context.Context, userID string) error {
	return m.repo.DeleteForUser(ctx, userID)
}
