package errorutil_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/pkg/util/errorutil"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", errorutil.NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", errorutil.NewNotFound("vehicle", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", errorutil.NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", errorutil.NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", errorutil.NewConflict("duplicate email", nil), "CONFLICT", http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var domainErr *errorutil.DomainError
			require.ErrorAs(t, tc.err, &domainErr)
			require.Equal(t, tc.code, domainErr.Code)
			require.Equal(t, tc.status, domainErr.HTTPStatus)
		})
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := errorutil.ToDomainError(pgx.ErrNoRows)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
	require.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	domainErr := errorutil.ToDomainError(errors.New("boom"))
	require.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	require.ErrorContains(t, domainErr, "boom")
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := errorutil.NewConflict("vin already registered", map[string]any{"vin": "1HG"})
	domainErr := errorutil.ToDomainError(original)
	require.Equal(t, "CONFLICT", domainErr.Code)
	require.Equal(t, "1HG", domainErr.Details["vin"])

	require.Nil(t, errorutil.ToDomainError(nil))
	require.NoError(t, errorutil.MapError(nil))
}
