package middleware

import (
	"context"
	"strings"

	"estatehub/internal/common"
	"estatehub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ActiveRoleHeader selects the role a request acts in. It must be one of the held roles.
const ActiveRoleHeader = "X-Active-Role"

const sessionContextKey = "session"

// SessionResolver loads the held roles of an authenticated user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID uuid.UUID, requested models.Role) (models.Session, error)
}

// Session turns the verified token into a models.Session available to handlers.
func Session(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.NewAppError(common.CodeUnauthenticated, "missing identity")
			}
			claims, ok := token.Claims.(*IdentityClaims)
			if !ok {
				return common.NewAppError(common.CodeUnauthenticated, "invalid claims")
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return common.NewAppError(common.CodeUnauthenticated, "token subject is not a user id")
			}

			var requested models.Role
			if header := strings.TrimSpace(c.Request().Header.Get(ActiveRoleHeader)); header != "" {
				requested, err = models.ParseRole(strings.ToLower(header))
				if err != nil {
					return err
				}
			}

			session, err := resolver.ResolveSession(c.Request().Context(), userID, requested)
			if err != nil {
				return err
			}

			SetSession(c, session)
			return next(c)
		}
	}
}

// SetSession attaches a resolved session to the echo context and the request context.
func SetSession(c echo.Context, session models.Session) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, session.UserID())
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(sessionContextKey, session)
}

// CurrentSession returns the session set by the Session middleware.
func CurrentSession(c echo.Context) (models.Session, error) {
	session, ok := c.Get(sessionContextKey).(models.Session)
	if !ok {
		return models.Session{}, common.NewAppError(common.CodeUnauthenticated, "no session")
	}
	return session, nil
}
