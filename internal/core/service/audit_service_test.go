package service

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

func TestAuditService_PrincipalSeesEverything(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85)
	if _, err := env.auth.ResetPassword(ctx, env.actor("principal"), "s_s001"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	entries, err := env.auditSvc.List(ctx, env.actor("principal"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Insertion order is preserved.
	if entries[0].Action != domain.AuditGradeCreated || entries[2].Action != domain.AuditPasswordReset {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestAuditService_TeacherScopedView(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95) // own action
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85) // other subject
	if _, err := env.auth.ResetPassword(ctx, env.actor("principal"), "t_mth"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	entries, err := env.auditSvc.List(ctx, env.actor("t_mth"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Only the teacher's own grade action: the CHN entry is another
	// subject, and password resets are not grade actions.
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", entries)
	}
	if entries[0].Actor != "T200" || entries[0].Action != domain.AuditGradeCreated {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestAuditService_TeacherSeesSubjectActionsByOthers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// A grade action on CHN recorded by a different actor is still visible
	// to the CHN teacher through the subject filter.
	env.audit.Record(ctx, domain.AuditEntry{
		Actor:  "T999",
		Action: domain.AuditGradeUpdated,
		Details: map[string]any{
			"subject_code": "CHN",
		},
	})

	entries, err := env.auditSvc.List(ctx, env.actor("t_chn"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the CHN entry, got %+v", entries)
	}
}

func TestAuditService_StudentForbidden(t *testing.T) {
	env := newTestEnv()
	if _, err := env.auditSvc.List(context.Background(), env.actor("s_s001")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
