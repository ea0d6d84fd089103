package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15*time.Minute)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, domain.RoleManager, claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", 15*time.Minute)
	verifier := auth.NewTokenManager("secret-b", 15*time.Minute)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleSales)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	// Non-positive TTLs fall back to the default, so use a tiny positive one.
	tm := auth.NewTokenManager("test-secret", time.Millisecond)

	token, _, err := tm.GenerateToken("user-1", domain.RoleSales)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = tm.ParseToken(token)
	require.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15*time.Minute)

	_, err := tm.ParseToken("not.a.jwt")
	require.Error(t, err)
}
