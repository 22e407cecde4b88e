package ports

import (
	"context"
	"time"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// AccountStore owns Account records. Read-modify-write sequences (failed
// attempt counting, lockout checks) run inside Update under the store's
// lock so concurrent logins for the same account cannot lose updates.
type AccountStore interface {
	// Find returns a copy of the account, or domain.ErrNotFound.
	Find(ctx context.Context, username string) (*domain.Account, error)
	// Update applies mutate to the live account inside the store's critical
	// section. Returns domain.ErrNotFound for unknown usernames.
	Update(ctx context.Context, username string, mutate func(*domain.Account)) error
	Create(ctx context.Context, account *domain.Account) error
}

// SessionStore maps opaque bearer tokens to usernames. It is the sole
// source of truth for session validity.
type SessionStore interface {
	Put(ctx context.Context, token, username string)
	Resolve(ctx context.Context, token string) (username string, ok bool)
	// Delete is idempotent; removing an unknown token is a no-op.
	Delete(ctx context.Context, token string)
}

// GradeUpsert reports the outcome of a ledger upsert.
type GradeUpsert struct {
	Grade    domain.Grade
	Created  bool
	OldScore float64 // previous score when Created is false
}

// GradeStore is the authoritative grade ledger. It also owns the per-student
// unread-notification flags so that flag updates and publish transitions
// share one critical section.
type GradeStore interface {
	// Upsert creates an unpublished grade at key or updates the existing one
	// in place (score, updated-at, created-by), atomically.
	Upsert(ctx context.Context, key domain.GradeKey, score float64, teacherID string, now time.Time) GradeUpsert
	Get(ctx context.Context, key domain.GradeKey) (domain.Grade, bool)
	// List returns a snapshot copy of all grades.
	List(ctx context.Context) []domain.Grade
	// PublishMatching marks every grade for (examID, subjectCode) whose
	// student satisfies inScope as published, setting the unread flag for
	// students whose grade newly transitioned. total counts all matching
	// grades, already-published ones included.
	PublishMatching(ctx context.Context, examID, subjectCode string, inScope func(studentNo string) bool) (total int, newlyPublished int)
	// TakeUnread atomically reads and clears the student's unread flag.
	TakeUnread(ctx context.Context, studentNo string) bool
}

// AuditStore is an append-only audit log. Record cannot fail.
type AuditStore interface {
	Record(ctx context.Context, entry domain.AuditEntry)
	// List returns a snapshot copy in insertion order.
	List(ctx context.Context) []domain.AuditEntry
}

// ReferenceStore serves the read-mostly school reference data: students,
// teachers, subjects and exams. Immutable after seeding.
type ReferenceStore interface {
	Student(ctx context.Context, studentNo string) (*domain.Student, bool)
	Teacher(ctx context.Context, teacherID string) (*domain.Teacher, bool)
	Subject(ctx context.Context, code string) (*domain.Subject, bool)
	Exam(ctx context.Context, examID string) (*domain.Exam, bool)
	Students(ctx context.Context) []domain.Student
	Subjects(ctx context.Context) []domain.Subject
	Exams(ctx context.Context) []domain.Exam
}
