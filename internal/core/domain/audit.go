package domain

import "time"

// AuditAction enumerates the mutating actions recorded for audit.
type AuditAction string

const (
	AuditGradeCreated   AuditAction = "grade_created"
	AuditGradeUpdated   AuditAction = "grade_updated"
	AuditGradePublished AuditAction = "grade_published"
	AuditExport         AuditAction = "export"
	AuditPasswordReset  AuditAction = "password_reset"
)

// gradeActions are the actions a teacher may see for subjects in their scope
// even when another actor recorded them.
var gradeActions = map[AuditAction]struct{}{
	AuditGradeCreated:   {},
	AuditGradeUpdated:   {},
	AuditGradePublished: {},
}

// IsGradeAction reports whether a is one of the grade lifecycle actions.
func (a AuditAction) IsGradeAction() bool {
	_, ok := gradeActions[a]
	return ok
}

// AuditEntry is one append-only audit record. Entries are never mutated or
// removed once appended.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
	Action    AuditAction    `json:"action"`
	Details   map[string]any `json:"details"`
}

// VisibleToTeacher reports whether the entry belongs in a teacher's audit
// view: their own actions, or grade lifecycle actions on their subjects.
func (e *AuditEntry) VisibleToTeacher(t *Teacher) bool {
	if e.Actor == t.TeacherID {
		return true
	}
	if !e.Action.IsGradeAction() {
		return false
	}
	code, _ := e.Details["subject_code"].(string)
	return code != "" && t.OwnsSubject(code)
}
