package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

// ActorKey is the echo context key under which Auth stores the resolved actor.
const ActorKey = "actor"

// TokenKey is the echo context key holding the raw bearer token, needed by
// logout and password-change handlers.
const TokenKey = "token"

// Auth resolves the opaque bearer token through the session registry and
// injects the actor into the request context. The registry is the sole
// source of truth; there is nothing to verify locally.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrUnauthenticated
			}

			actor, err := auth.GetAccount(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(ActorKey, actor)
			c.Set(TokenKey, parts[1])
			return next(c)
		}
	}
}
