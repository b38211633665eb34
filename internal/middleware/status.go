package middleware

import (
	"errors"
	"net/http"

	"estatehub/internal/common"

	"github.com/labstack/echo/v4"
)

// statusOf returns the status the error handler will render for err.
func statusOf(err error) int {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return common.HTTPStatus(appErr.Code)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
