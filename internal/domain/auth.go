package domain

import "time"

// TokenPair bundles the credentials handed to a client on login,
// account activation, or refresh-token rotation.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccountTokenPurpose distinguishes one-time account tokens.
type AccountTokenPurpose string

const (
	TokenPurposeActivation    AccountTokenPurpose = "ACTIVATION"
	TokenPurposePasswordReset AccountTokenPurpose = "PASSWORD_RESET"
)
