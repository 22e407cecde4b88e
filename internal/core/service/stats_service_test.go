package service

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

func seedChineseScores(env *testEnv) {
	scores := map[string]float64{
		"S001": 88, "S002": 76, "S003": 92,
		"S004": 81, "S005": 67, "S006": 85,
	}
	for studentNo, score := range scores {
		env.mustUpsert("t_chn", "EX2025M", "CHN", studentNo, score)
	}
}

func TestStatsService_Overview(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedChineseScores(env)

	entries, err := env.stats.Overview(ctx, env.actor("principal"), "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	// Only CHN has scores; MTH and ENG produce no entries.
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", entries)
	}
	e := entries[0]
	if e.ExamID != "EX2025M" || e.SubjectCode != "CHN" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Stats.Highest != 92 || e.Stats.Lowest != 67 {
		t.Fatalf("expected highest 92 lowest 67, got %+v", e.Stats)
	}
	if e.Stats.Average != 81.5 {
		t.Fatalf("expected average 81.5, got %v", e.Stats.Average)
	}
	if e.Stats.PassRate != 100.0 {
		t.Fatalf("expected pass rate 100.0, got %v", e.Stats.PassRate)
	}
}

func TestStatsService_Overview_IncludesUnpublished(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Unpublished scores still aggregate: the overview is principal-facing.
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 50)
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S002", 70)

	entries, err := env.stats.Overview(ctx, env.actor("principal"), "EX2025M")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", entries)
	}
	if entries[0].Stats.PassRate != 50.0 {
		t.Fatalf("expected pass rate 50.0, got %v", entries[0].Stats.PassRate)
	}
}

func TestStatsService_Overview_Errors(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.stats.Overview(ctx, env.actor("t_mth"), ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for teacher, got %v", err)
	}
	if _, err := env.stats.Overview(ctx, env.actor("principal"), "EX9999"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown exam, got %v", err)
	}
}

func TestStatsService_GradeDetails_Filters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedChineseScores(env)
	env.mustUpsert("t_mth", "EX2025M", "MTH", "S001", 95)

	all, err := env.stats.GradeDetails(ctx, env.actor("principal"), ports.DetailFilters{})
	if err != nil {
		t.Fatalf("GradeDetails: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(all))
	}

	class2, err := env.stats.GradeDetails(ctx, env.actor("principal"), ports.DetailFilters{ClassName: "Class 2", SubjectCode: "CHN"})
	if err != nil {
		t.Fatalf("GradeDetails: %v", err)
	}
	if len(class2) != 3 {
		t.Fatalf("expected 3 Class 2 CHN rows, got %+v", class2)
	}
	for _, row := range class2 {
		if row.ClassName != "Class 2" || row.SubjectCode != "CHN" {
			t.Fatalf("filter leak: %+v", row)
		}
	}
}

func TestStatsService_ExportRows_Audited(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedChineseScores(env)

	rows, err := env.stats.ExportRows(ctx, env.actor("principal"), ports.DetailFilters{SubjectCode: "CHN"})
	if err != nil {
		t.Fatalf("ExportRows: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}

	entries := env.audit.List(ctx)
	last := entries[len(entries)-1]
	if last.Action != domain.AuditExport || last.Details["scope"] != "principal" {
		t.Fatalf("expected a principal export audit entry, got %+v", last)
	}
	if last.Actor != "principal" {
		t.Fatalf("unexpected export actor: %s", last.Actor)
	}
}
