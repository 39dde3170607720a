package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"commit-tracker/internal/auth"
)

const userIDKey = "userID"

// RequireAuth rejects requests without a valid bearer token and stashes the
// verified user id on the context.
func RequireAuth(tm *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			userID, err := tm.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth resolves the caller identity when a valid token is present
// and lets the request through either way. The commit webhook uses this:
// anonymous events are acknowledged without being persisted.
func OptionalAuth(tm *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token != "" {
				if userID, err := tm.Verify(token); err == nil {
					c.Set(userIDKey, userID)
				}
			}
			return next(c)
		}
	}
}

// currentUser returns the verified user id, or zero for anonymous callers.
func currentUser(c echo.Context) uint {
	if v, ok := c.Get(userIDKey).(uint); ok {
		return v
	}
	return 0
}
