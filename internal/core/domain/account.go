package domain

import "time"

// Role identifies what kind of actor an account represents.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RolePrincipal Role = "principal"
)

// Account models a login identity. BindID links the account to its domain
// record: a student number for students, a teacher id for teachers, empty
// for the principal.
type Account struct {
	Username            string    `json:"username"`
	Role                Role      `json:"role"`
	BindID              string    `json:"bind_id,omitempty"`
	PasswordHash        string    `json:"-"`
	FailedAttempts      int       `json:"-"`
	LockedUntil         time.Time `json:"-"` // zero = not locked
	ForcePasswordChange bool      `json:"force_password_change"`
}

// Locked reports whether the account is locked out at the given instant.
func (a *Account) Locked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && a.LockedUntil.After(now)
}

// LoginResult is returned by a successful authentication.
type LoginResult struct {
	Token              string `json:"token"`
	Role               Role   `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}
