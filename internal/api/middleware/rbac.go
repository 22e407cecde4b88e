package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// RBAC enforces role-based access control on routes behind Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get(ActorKey).(domain.Actor)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[actor.Account.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
