package ports

import (
	"context"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// AuthService covers credential verification, session resolution and
// password lifecycle.
type AuthService interface {
	// Authenticate verifies credentials and mints a session token.
	// Unknown user and wrong password both yield domain.ErrInvalidCredentials;
	// a locked account yields domain.ErrAccountLocked before any verification.
	Authenticate(ctx context.Context, username, password string) (*domain.LoginResult, error)
	// GetAccount resolves a bearer token to an actor with its role binding
	// resolved, or domain.ErrUnauthenticated.
	GetAccount(ctx context.Context, token string) (domain.Actor, error)
	// RequireRole resolves the token and rejects with domain.ErrForbidden
	// unless the account's role is one of roles.
	RequireRole(ctx context.Context, token string, roles ...domain.Role) (domain.Actor, error)
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error
	// ResetPassword generates and returns a fresh random password for
	// username. The caller must already hold the principal role.
	ResetPassword(ctx context.Context, actor domain.Actor, username string) (string, error)
	// Logout invalidates the token; unknown tokens are a no-op.
	Logout(ctx context.Context, token string)
}
