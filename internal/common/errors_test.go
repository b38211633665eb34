package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDBError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		constraint string
	}{
		{"no rows", pgx.ErrNoRows, CodeNotFound, ""},
		{"wrapped no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), CodeNotFound, ""},
		{"unique", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "profiles_email_key"}, CodeConflict, "profiles_email_key"},
		{"exclusion", &pgconn.PgError{Code: pgExclusionViolation}, CodeConflict, ""},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "leases_tenant_id_fkey"}, CodeValidation, "leases_tenant_id_fkey"},
		{"check", &pgconn.PgError{Code: pgCheckViolation}, CodeValidation, ""},
		{"other", errors.New("connection reset"), CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromDBError(tt.err, "lease")

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
			if tt.constraint != "" {
				assert.Equal(t, tt.constraint, appErr.Details["constraint"])
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, FromDBError(nil, "lease"))

	original := NewPermissionDenied("edit this property")
	assert.Same(t, original, FromDBError(original, "property"))
}

func TestAppErrorIs(t *testing.T) {
	err := fmt.Errorf("scan: %w", NewAppError(CodeCredentialExpired, "credential expired"))
	assert.ErrorIs(t, err, ErrCredentialExpired)
	assert.NotErrorIs(t, err, ErrCredentialInvalid)
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", NewValidationError("price", "price must not be negative"), http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"},
		{"role not held", NewAppError(CodeRoleNotHeld, "role not held"), http.StatusForbidden, "ROLE_NOT_HELD", "role not held"},
		{"credential expired", NewAppError(CodeCredentialExpired, "expired"), http.StatusUnprocessableEntity, "CREDENTIAL_EXPIRED", "expired"},
		{"rate limited", NewAppError(CodeRateLimited, "slow down"), http.StatusTooManyRequests, "RATE_LIMITED", "slow down"},
		{"storage", WrapError(CodeStorage, "upload failed", errors.New("timeout")), http.StatusBadGateway, "STORAGE_ERROR", "upload failed"},
		{"internal hides message", WrapError(CodeInternal, "pool exhausted", errors.New("x")), http.StatusInternalServerError, "INTERNAL", "internal server error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Not Found"},
		{"echo unauthorized", echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt"), http.StatusUnauthorized, "UNAUTHENTICATED", "missing or malformed jwt"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/properties", nil), rec)

			HTTPErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = ValidatePaginationParams(5000, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000, limit)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-03-01 ", "start_date")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	_, err = ParseDate("01/03/2026", "start_date")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Details["start_date"], "YYYY-MM-DD")
}

func TestSanitizeHTMLField(t *testing.T) {
	text := "  <b>leak</b> in kitchen "
	require.NoError(t, SanitizeHTMLField(&text, "description", 100))
	assert.Equal(t, "&lt;b&gt;leak&lt;/b&gt; in kitchen", text)

	long := "<<<<<<<<<<"
	assert.Error(t, SanitizeHTMLField(&long, "description", 20))
}
