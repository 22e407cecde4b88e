package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
	"github.com/schoolworks/gradebook/internal/pkg/security"
)

const (
	// LockoutThreshold is the number of consecutive failed logins after
	// which an account locks.
	LockoutThreshold = 5
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 15 * time.Minute

	resetPasswordLength = 12
)

// AuthService implements credential verification, session management and
// the password lifecycle.
type AuthService struct {
	accounts ports.AccountStore
	sessions ports.SessionStore
	refs     ports.ReferenceStore
	audit    ports.AuditStore
	log      zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountStore,
	sessions ports.SessionStore,
	refs ports.ReferenceStore,
	audit ports.AuditStore,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		refs:     refs,
		audit:    audit,
		log:      log,
	}
}

// Authenticate verifies credentials and mints a session token.
//
// Unknown username and wrong password return the same error so account
// existence cannot be probed. The lockout check runs before password
// verification; a locked account rejects even the correct password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	account, err := s.accounts.Find(ctx, username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if account.Locked(now) {
		return nil, domain.ErrAccountLocked
	}

	if !security.VerifyPassword(password, account.PasswordHash) {
		var lockedNow bool
		_ = s.accounts.Update(ctx, username, func(a *domain.Account) {
			a.FailedAttempts++
			if a.FailedAttempts >= LockoutThreshold {
				a.LockedUntil = now.Add(LockoutDuration)
				lockedNow = true
			}
		})
		if lockedNow {
			s.log.Warn().Str("username", username).Msg("account locked after repeated failed logins")
		}
		return nil, domain.ErrInvalidCredentials
	}

	_ = s.accounts.Update(ctx, username, func(a *domain.Account) {
		a.FailedAttempts = 0
		a.LockedUntil = time.Time{}
	})

	token, err := security.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	s.sessions.Put(ctx, token, username)

	s.log.Info().Str("username", username).Str("role", string(account.Role)).Msg("login succeeded")

	return &domain.LoginResult{
		Token:              token,
		Role:               account.Role,
		MustChangePassword: account.ForcePasswordChange,
	}, nil
}

// GetAccount resolves a bearer token to an actor with its domain binding
// attached. An unknown token or a vanished account both read as
// unauthenticated.
func (s *AuthService) GetAccount(ctx context.Context, token string) (domain.Actor, error) {
	username, ok := s.sessions.Resolve(ctx, token)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	account, err := s.accounts.Find(ctx, username)
	if err != nil {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	actor := domain.Actor{Account: *account}
	switch account.Role {
	case domain.RoleStudent:
		if st, ok := s.refs.Student(ctx, account.BindID); ok {
			actor.Student = st
		}
	case domain.RoleTeacher:
		if t, ok := s.refs.Teacher(ctx, account.BindID); ok {
			actor.Teacher = t
		}
	}
	return actor, nil
}

// RequireRole resolves the token and gates on role membership.
func (s *AuthService) RequireRole(ctx context.Context, token string, roles ...domain.Role) (domain.Actor, error) {
	actor, err := s.GetAccount(ctx, token)
	if err != nil {
		return domain.Actor{}, err
	}
	for _, role := range roles {
		if actor.Account.Role == role {
			return actor, nil
		}
	}
	return domain.Actor{}, domain.ErrForbidden
}

// ChangePassword rehashes the caller's password after verifying the old one
// and clears the force-change flag and any lockout state.
func (s *AuthService) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	actor, err := s.GetAccount(ctx, token)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(oldPassword, actor.Account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.accounts.Update(ctx, actor.Account.Username, func(a *domain.Account) {
		a.PasswordHash = hash
		a.ForcePasswordChange = false
		a.FailedAttempts = 0
		a.LockedUntil = time.Time{}
	}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("username", actor.Account.Username).Msg("password changed")
	return nil
}

// ResetPassword issues a fresh random password for username, forces a change
// on next login and clears lockout state. Principal only.
func (s *AuthService) ResetPassword(ctx context.Context, actor domain.Actor, username string) (string, error) {
	if actor.Account.Role != domain.RolePrincipal {
		return "", domain.ErrForbidden
	}

	newPassword, err := security.GenerateRandomPassword(resetPasswordLength)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	if err := s.accounts.Update(ctx, username, func(a *domain.Account) {
		a.PasswordHash = hash
		a.ForcePasswordChange = true
		a.FailedAttempts = 0
		a.LockedUntil = time.Time{}
	}); err != nil {
		return "", err
	}

	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Account.Username,
		Action:    domain.AuditPasswordReset,
		Details:   map[string]any{"username": username},
	})
	s.log.Info().Str("username", username).Str("actor", actor.Account.Username).Msg("password reset")

	return newPassword, nil
}

// Logout invalidates the token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.sessions.Delete(ctx, token)
}
