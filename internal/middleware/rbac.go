package middleware

import (
	"strings"

	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole admits sessions holding any of roles. It is a coarse route guard; the services
// still authorize every operation against the property.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := CurrentSession(c)
			if err != nil {
				return err
			}
			if !session.Holds(roles...) {
				return &common.AppError{
					Code:    common.CodePermissionDenied,
					Message: "this route requires one of the roles " + strings.Join(names, ", "),
					Details: map[string]string{"roles": strings.Join(names, ",")},
				}
			}
			return next(c)
		}
	}
}
