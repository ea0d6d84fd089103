package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/dealer-service/internal/auth"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(hash, "hunter2"))
	require.Error(t, auth.ComparePassword(hash, "hunter3"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	// A misconfigured cost must not break activation or password reset.
	hash, err := auth.HashPassword("hunter2", 99)
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(hash, "hunter2"))
}
