package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/api/middleware"
	"github.com/schoolworks/gradebook/internal/core/domain"
)

// ctxActor extracts the actor injected by the Auth middleware. Its absence
// means the route was wired without Auth, which reads as unauthenticated
// rather than a server error so nothing leaks.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := c.Get(middleware.ActorKey).(domain.Actor)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return actor, nil
}

// ctxToken extracts the raw bearer token stored by the Auth middleware.
func ctxToken(c echo.Context) (string, error) {
	token, ok := c.Get(middleware.TokenKey).(string)
	if !ok || token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}
