package service

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

func TestGradeService_UpsertGrade_CreateThenUpdate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")

	created, err := env.gradeSvc.UpsertGrade(ctx, teacher, "EX2025M", "MTH", "S001", 95)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Published {
		t.Fatalf("new grade must be unpublished")
	}
	if created.CreatedBy != "T200" {
		t.Fatalf("unexpected creator: %s", created.CreatedBy)
	}

	updated, err := env.gradeSvc.UpsertGrade(ctx, teacher, "EX2025M", "MTH", "S001", 96)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Score != 96.0 {
		t.Fatalf("expected score 96.0, got %v", updated.Score)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt changed on update")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("UpdatedAt did not advance")
	}
	if got := len(env.grades.List(ctx)); got != 1 {
		t.Fatalf("expected one grade at the key, got %d", got)
	}

	entries := env.audit.List(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != domain.AuditGradeCreated {
		t.Fatalf("first entry should be grade_created, got %s", entries[0].Action)
	}
	update := entries[1]
	if update.Action != domain.AuditGradeUpdated || update.Actor != "T200" {
		t.Fatalf("unexpected update entry: %+v", update)
	}
	if update.Details["old_score"] != 95.0 || update.Details["new_score"] != 96.0 {
		t.Fatalf("audit entry missing old/new score: %+v", update.Details)
	}
}

func TestGradeService_UpsertGrade_RoundsToOneDecimal(t *testing.T) {
	env := newTestEnv()
	grade, err := env.gradeSvc.UpsertGrade(context.Background(), env.actor("t_mth"), "EX2025M", "MTH", "S001", 88.54)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if grade.Score != 88.5 {
		t.Fatalf("expected 88.5, got %v", grade.Score)
	}
}

func TestGradeService_UpsertGrade_Preconditions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")

	cases := []struct {
		name    string
		actor   domain.Actor
		examID  string
		subject string
		student string
		score   float64
		want    error
	}{
		{"student actor", env.actor("s_s001"), "EX2025M", "MTH", "S001", 90, domain.ErrForbidden},
		{"unknown exam", teacher, "EX9999", "MTH", "S001", 90, domain.ErrNotFound},
		{"unknown subject", teacher, "EX2025M", "PHY", "S001", 90, domain.ErrNotFound},
		{"unknown student", teacher, "EX2025M", "MTH", "BADSTU", 90, domain.ErrNotFound},
		{"subject out of scope", teacher, "EX2025M", "CHN", "S001", 90, domain.ErrForbidden},
		{"class out of scope", env.actor("t_eng"), "EX2025M", "ENG", "S004", 90, domain.ErrForbidden},
		{"score too high", teacher, "EX2025M", "MTH", "S001", 100.5, domain.ErrInvalidScore},
		{"score negative", teacher, "EX2025M", "MTH", "S001", -1, domain.ErrInvalidScore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.gradeSvc.UpsertGrade(ctx, tc.actor, tc.examID, tc.subject, tc.student, tc.score); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if got := len(env.grades.List(ctx)); got != 0 {
		t.Fatalf("rejected writes must not store grades, found %d", got)
	}
}

func TestGradeService_BulkImport_PartialSuccess(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	rows := []ports.ImportRow{
		{Line: 2, ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S001", Score: "85"},
		{Line: 3, ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "BADSTU", Score: "70"},
		{Line: 4, ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S002", Score: "999"},
	}
	result, err := env.gradeSvc.BulkImport(ctx, env.actor("t_chn"), rows)
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("expected 1 processed row, got %d", result.Processed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", result.Errors)
	}
	if result.Errors[0].Line != 3 || result.Errors[1].Line != 4 {
		t.Fatalf("row errors carry wrong line numbers: %+v", result.Errors)
	}

	if _, ok := env.grades.Get(ctx, domain.GradeKey{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S001"}); !ok {
		t.Fatalf("valid row was not stored")
	}
	if got := len(env.grades.List(ctx)); got != 1 {
		t.Fatalf("only the valid row may be stored, found %d grades", got)
	}
}

func TestGradeService_BulkImport_MalformedRows(t *testing.T) {
	env := newTestEnv()

	rows := []ports.ImportRow{
		{Line: 2, ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S001", Score: "eighty"},
		{Line: 3, ExamID: "EX2025M", SubjectCode: "", StudentNo: "S002", Score: "70"},
		{Line: 4, ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S003", Score: " 91 "},
	}
	result, err := env.gradeSvc.BulkImport(context.Background(), env.actor("t_chn"), rows)
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if result.Processed != 1 || len(result.Errors) != 2 {
		t.Fatalf("expected 1 processed / 2 errors, got %+v", result)
	}
}

func TestGradeService_BulkImport_RequiresTeacher(t *testing.T) {
	env := newTestEnv()
	if _, err := env.gradeSvc.BulkImport(context.Background(), env.actor("s_s001"), nil); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGradeService_ListTeacherGrades_VisibilityPartition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// MTH grades in both classes, CHN grade in Class 1, ENG in Class 1.
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S004", 88)
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85)
	env.mustUpsert("t_eng", "EX2025M", "ENG", "S002", 78)

	// t_eng teaches ENG in Class 1 only: exactly one visible grade,
	// unpublished state notwithstanding.
	views, err := env.gradeSvc.ListTeacherGrades(ctx, env.actor("t_eng"), "", "", ports.SortByStudentNo)
	if err != nil {
		t.Fatalf("ListTeacherGrades: %v", err)
	}
	if len(views) != 1 || views[0].SubjectCode != "ENG" || views[0].StudentNo != "S002" {
		t.Fatalf("visibility partition violated: %+v", views)
	}

	// t_mth sees both MTH grades and nothing else.
	views, err = env.gradeSvc.ListTeacherGrades(ctx, env.actor("t_mth"), "", "", ports.SortByScoreDesc)
	if err != nil {
		t.Fatalf("ListTeacherGrades: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 MTH grades, got %+v", views)
	}
	if views[0].Score < views[1].Score {
		t.Fatalf("score_desc ordering violated: %+v", views)
	}

	// Class filter narrows to Class 2.
	views, err = env.gradeSvc.ListTeacherGrades(ctx, env.actor("t_mth"), "", "Class 2", ports.SortByStudentNo)
	if err != nil {
		t.Fatalf("ListTeacherGrades: %v", err)
	}
	if len(views) != 1 || views[0].StudentNo != "S004" {
		t.Fatalf("class filter failed: %+v", views)
	}
}

func TestGradeService_Publish(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S002", 82)

	count, err := env.gradeSvc.Publish(ctx, teacher, "EX2025M", "MTH")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	// Re-publish: count still includes already-published rows.
	count, err = env.gradeSvc.Publish(ctx, teacher, "EX2025M", "MTH")
	if err != nil {
		t.Fatalf("re-publish: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2 on re-publish, got %d", count)
	}

	entries := env.audit.List(ctx)
	last := entries[len(entries)-1]
	if last.Action != domain.AuditGradePublished || last.Details["count"] != 2 {
		t.Fatalf("unexpected publish audit entry: %+v", last)
	}
}

func TestGradeService_Publish_Errors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")

	if _, err := env.gradeSvc.Publish(ctx, teacher, "EX2025M", "CHN"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for out-of-scope subject, got %v", err)
	}
	if _, err := env.gradeSvc.Publish(ctx, teacher, "EX9999", "MTH"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown exam, got %v", err)
	}
	if _, err := env.gradeSvc.Publish(ctx, teacher, "EX2025M", "MTH"); !errors.Is(err, domain.ErrNoMatchingRecords) {
		t.Fatalf("expected ErrNoMatchingRecords with no grades, got %v", err)
	}
	if _, err := env.gradeSvc.Publish(ctx, env.actor("s_s001"), "EX2025M", "MTH"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for student, got %v", err)
	}
}

func TestGradeService_PublishMonotonic(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	if _, err := env.gradeSvc.Publish(ctx, teacher, "EX2025M", "MTH"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// A later score update must not revert published state.
	if _, err := env.gradeSvc.UpsertGrade(ctx, teacher, "EX2025M", "MTH", "S001", 96); err != nil {
		t.Fatalf("update after publish: %v", err)
	}
	grade, _ := env.grades.Get(ctx, domain.GradeKey{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S001"})
	if !grade.Published {
		t.Fatalf("published state reverted by update")
	}
}

func TestGradeService_NotificationFlagLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	teacher := env.actor("t_mth")
	student := env.actor("s_s001")

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	if _, err := env.gradeSvc.Publish(ctx, teacher, "EX2025M", "MTH"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	res, err := env.gradeSvc.ListStudentGrades(ctx, student, "", "")
	if err != nil {
		t.Fatalf("ListStudentGrades: %v", err)
	}
	if !res.HasUnread {
		t.Fatalf("publish should set the unread flag")
	}

	res, err = env.gradeSvc.ListStudentGrades(ctx, student, "", "")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if res.HasUnread {
		t.Fatalf("unread flag must clear on read")
	}

	// A previously-unpublished grade publishing again sets it once more.
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85)
	if _, err := env.gradeSvc.Publish(ctx, env.actor("t_chn"), "EX2025M", "CHN"); err != nil {
		t.Fatalf("publish CHN: %v", err)
	}
	res, err = env.gradeSvc.ListStudentGrades(ctx, student, "", "")
	if err != nil {
		t.Fatalf("third read: %v", err)
	}
	if !res.HasUnread {
		t.Fatalf("new publish should set the flag again")
	}
}

func TestGradeService_ListStudentGrades_OnlyOwnPublished(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95) // stays unpublished
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85)
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S002", 76)
	env.mustUpsert("t_chn", "EX2025M", "CHN", "S004", 81)
	if _, err := env.gradeSvc.Publish(ctx, env.actor("t_chn"), "EX2025M", "CHN"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	res, err := env.gradeSvc.ListStudentGrades(ctx, env.actor("s_s001"), "", "")
	if err != nil {
		t.Fatalf("ListStudentGrades: %v", err)
	}
	if len(res.Grades) != 1 {
		t.Fatalf("expected only the published CHN grade, got %+v", res.Grades)
	}
	view := res.Grades[0]
	if view.SubjectCode != "CHN" || view.Score != 85.0 {
		t.Fatalf("unexpected view: %+v", view)
	}
	// Class average covers Class 1 only: (85+76)/2.
	if view.ClassAverage != 80.5 {
		t.Fatalf("expected class average 80.5, got %v", view.ClassAverage)
	}
	if view.ExamName != "2025 Midterm" || view.SubjectName != "Chinese" {
		t.Fatalf("reference data not joined: %+v", view)
	}

	// Other roles are rejected.
	if _, err := env.gradeSvc.ListStudentGrades(ctx, env.actor("t_mth"), "", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for teacher, got %v", err)
	}
}

func TestGradeService_ListStudentGrades_Filters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mustUpsert("t_chn", "EX2025M", "CHN", "S001", 85)
	if _, err := env.gradeSvc.Publish(ctx, env.actor("t_chn"), "EX2025M", "CHN"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	res, err := env.gradeSvc.ListStudentGrades(ctx, env.actor("s_s001"), "2099-9", "")
	if err != nil {
		t.Fatalf("term filter: %v", err)
	}
	if len(res.Grades) != 0 {
		t.Fatalf("term filter should exclude everything, got %+v", res.Grades)
	}

	res, err = env.gradeSvc.ListStudentGrades(ctx, env.actor("s_s001"), "2025-1", "EX2025M")
	if err != nil {
		t.Fatalf("matching filters: %v", err)
	}
	if len(res.Grades) != 1 {
		t.Fatalf("matching filters should keep the grade, got %+v", res.Grades)
	}
}

func TestGradeService_TeacherExportRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S004", 88)

	rows, err := env.gradeSvc.TeacherExportRows(ctx, env.actor("t_mth"), "EX2025M", "")
	if err != nil {
		t.Fatalf("TeacherExportRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].StudentNo != "S001" || rows[0].ExamName != "2025 Midterm" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}

	entries := env.audit.List(ctx)
	last := entries[len(entries)-1]
	if last.Action != domain.AuditExport || last.Details["scope"] != "teacher" {
		t.Fatalf("expected a teacher export audit entry, got %+v", last)
	}
}
