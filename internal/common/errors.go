package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// ErrorCode identifies a class of failure surfaced to API clients.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION_ERROR"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeRoleNotHeld       ErrorCode = "ROLE_NOT_HELD"
	CodeKYCNotApproved    ErrorCode = "KYC_NOT_APPROVED"
	CodeCredentialInvalid ErrorCode = "CREDENTIAL_INVALID"
	CodeCredentialExpired ErrorCode = "CREDENTIAL_EXPIRED"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	CodeStorage           ErrorCode = "STORAGE_ERROR"
	CodeInternal          ErrorCode = "INTERNAL"
)

// Postgres SQLSTATE codes we classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgExclusionViolation  = "23P01"
)

// AppError is the error type returned by services.
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code, so errors.Is(err, common.ErrNotFound) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation        = &AppError{Code: CodeValidation}
	ErrNotFound          = &AppError{Code: CodeNotFound}
	ErrPermissionDenied  = &AppError{Code: CodePermissionDenied}
	ErrConflict          = &AppError{Code: CodeConflict}
	ErrRoleNotHeld       = &AppError{Code: CodeRoleNotHeld}
	ErrKYCNotApproved    = &AppError{Code: CodeKYCNotApproved}
	ErrCredentialInvalid = &AppError{Code: CodeCredentialInvalid}
	ErrCredentialExpired = &AppError{Code: CodeCredentialExpired}
	ErrRateLimited       = &AppError{Code: CodeRateLimited}
	ErrUnauthenticated   = &AppError{Code: CodeUnauthenticated}
	ErrStorage           = &AppError{Code: CodeStorage}
	ErrInternal          = &AppError{Code: CodeInternal}
)

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError builds a VALIDATION_ERROR with a single field detail.
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "Validation failed",
		Details: map[string]string{field: message},
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewPermissionDenied(action string) *AppError {
	return &AppError{Code: CodePermissionDenied, Message: fmt.Sprintf("not permitted to %s", action)}
}

// FromDBError classifies a storage error by its type and SQLSTATE.
// resource names the entity for NOT_FOUND messages.
func FromDBError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return &AppError{
				Code:    CodeConflict,
				Message: fmt.Sprintf("%s already exists", resource),
				Details: constraintDetails(pgErr),
				Err:     err,
			}
		case pgForeignKeyViolation:
			return &AppError{
				Code:    CodeValidation,
				Message: fmt.Sprintf("%s references a record that does not exist", resource),
				Details: constraintDetails(pgErr),
				Err:     err,
			}
		case pgCheckViolation, pgNotNullViolation:
			return &AppError{
				Code:    CodeValidation,
				Message: fmt.Sprintf("%s failed a data constraint", resource),
				Details: constraintDetails(pgErr),
				Err:     err,
			}
		}
	}

	return &AppError{Code: CodeInternal, Message: fmt.Sprintf("failed to access %s", resource), Err: err}
}

func constraintDetails(pgErr *pgconn.PgError) map[string]string {
	if pgErr.ConstraintName == "" {
		return nil
	}
	return map[string]string{"constraint": pgErr.ConstraintName}
}

// HTTPStatus maps every ErrorCode to its HTTP status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodePermissionDenied, CodeRoleNotHeld, CodeKYCNotApproved:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeCredentialInvalid, CodeCredentialExpired:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeStorage:
		return http.StatusBadGateway
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// SendError renders err in the standard error envelope.
func SendError(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		log.Printf("ERROR: unhandled error on %s %s (user=%s): %v", c.Request().Method, c.Path(), requestUser(c), err)
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse(string(CodeInternal), "internal server error", nil))
	}

	status := HTTPStatus(appErr.Code)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s (user=%s): %v", c.Request().Method, c.Path(), requestUser(c), appErr)
		if appErr.Code == CodeInternal {
			message = "internal server error"
		}
	}
	return c.JSON(status, CreateErrorResponse(string(appErr.Code), message, appErr.Details))
}

func requestUser(c echo.Context) string {
	if userID, ok := GetUserIDFromContext(c.Request().Context()); ok {
		return userID.String()
	}
	return "anonymous"
}

// HTTPErrorHandler renders AppErrors and echo.HTTPErrors in the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := codeForStatus(he.Code)
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		if sendErr := c.JSON(he.Code, CreateErrorResponse(string(code), message, nil)); sendErr != nil {
			log.Printf("ERROR: failed to write error response: %v", sendErr)
		}
		return
	}

	if sendErr := SendError(c, err); sendErr != nil {
		log.Printf("ERROR: failed to write error response: %v", sendErr)
	}
}

func codeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
