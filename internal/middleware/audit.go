package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// auditSkipPrefixes are never audited.
var auditSkipPrefixes = []string{"/health", "/swagger"}

// sensitivePrefixes are audited for every method, reads included.
var sensitivePrefixes = []string{"/v1/admin/", "/v1/kyc", "/v1/onboarding/"}

// Audit writes one AUDIT line for every mutating request, every failed request and every
// request under a sensitive prefix. It runs after Session so the acting user and role are known.
func Audit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			path := c.Path()
			if !shouldAudit(method, path, err) {
				return err
			}

			actor, role := "anonymous", "-"
			if session, sessErr := CurrentSession(c); sessErr == nil {
				actor = session.UserID().String()
				if session.Active() != "" {
					role = string(session.Active())
				}
			}
			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}
			log.Printf("AUDIT: user=%s role=%s %s %s status=%d ip=%s took=%s",
				actor, role, method, c.Request().URL.Path, status, c.RealIP(), time.Since(start).Round(time.Millisecond))
			return err
		}
	}
}

func shouldAudit(method, path string, reqErr error) bool {
	for _, prefix := range auditSkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	if reqErr != nil {
		return true
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	for _, prefix := range sensitivePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
