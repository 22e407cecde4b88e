package ports

import (
	"context"
	"time"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// StudentGradeView is one published grade as shown to its student, joined
// with exam/subject reference data and the class average for context.
type StudentGradeView struct {
	ExamID       string    `json:"exam_id"`
	ExamName     string    `json:"exam_name"`
	ExamDate     time.Time `json:"exam_date"`
	SubjectCode  string    `json:"subject_code"`
	SubjectName  string    `json:"subject_name"`
	Score        float64   `json:"score"`
	ClassAverage float64   `json:"class_average"`
}

// StudentGradesResult is returned by ListStudentGrades. HasUnread reflects
// the notification flag as it stood before this read cleared it.
type StudentGradesResult struct {
	HasUnread bool               `json:"has_unread"`
	Grades    []StudentGradeView `json:"grades"`
}

// TeacherGradeView is one grade row in a teacher's listing.
type TeacherGradeView struct {
	StudentNo   string  `json:"student_no"`
	StudentName string  `json:"student_name"`
	ClassName   string  `json:"class_name"`
	SubjectCode string  `json:"subject_code"`
	Score       float64 `json:"score"`
	Published   bool    `json:"published"`
}

// Sort orders accepted by ListTeacherGrades.
const (
	SortByStudentNo = "student_no"
	SortByScoreAsc  = "score_asc"
	SortByScoreDesc = "score_desc"
)

// ImportRow is one pre-split bulk import row. All fields arrive as text;
// Line is the 1-based source line used in error reports.
type ImportRow struct {
	Line        int
	ExamID      string
	SubjectCode string
	StudentNo   string
	Score       string
}

// RowError reports why a single import row was rejected.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarises a bulk import: a batch partially succeeds rather
// than aborting on the first bad row.
type ImportResult struct {
	Processed int        `json:"processed"`
	Errors    []RowError `json:"errors"`
}

// ExportRow is one fully-joined grade row handed to the presentation layer
// for CSV formatting.
type ExportRow struct {
	ExamName    string
	SubjectName string
	StudentNo   string
	StudentName string
	ClassName   string
	Score       float64
	Published   bool
}

// GradeService covers the student- and teacher-facing grade operations.
type GradeService interface {
	// ListStudentGrades returns the student's published grades, optionally
	// filtered by term and exam, and atomically clears the unread flag.
	ListStudentGrades(ctx context.Context, actor domain.Actor, term, examID string) (*StudentGradesResult, error)
	// UpsertGrade is the single mutation path for grade writes: create on
	// first write, in-place update afterwards, audited either way.
	UpsertGrade(ctx context.Context, actor domain.Actor, examID, subjectCode, studentNo string, score float64) (*domain.Grade, error)
	// BulkImport routes each row through UpsertGrade, collecting per-row
	// errors without stopping the batch.
	BulkImport(ctx context.Context, actor domain.Actor, rows []ImportRow) (*ImportResult, error)
	ListTeacherGrades(ctx context.Context, actor domain.Actor, examID, className, sortBy string) ([]TeacherGradeView, error)
	// Publish marks all grades for (examID, subjectCode) within the
	// teacher's class scope as published and returns the number of matching
	// grades, already-published ones included.
	Publish(ctx context.Context, actor domain.Actor, examID, subjectCode string) (int, error)
	// TeacherExportRows returns the teacher's visible grades as export rows
	// and records an export audit entry.
	TeacherExportRows(ctx context.Context, actor domain.Actor, examID, className string) ([]ExportRow, error)
}

// OverviewEntry is one (exam, subject) aggregate in the principal overview.
type OverviewEntry struct {
	ExamID      string                 `json:"exam_id"`
	ExamName    string                 `json:"exam_name"`
	SubjectCode string                 `json:"subject_code"`
	SubjectName string                 `json:"subject_name"`
	Stats       domain.AggregatedStats `json:"stats"`
}

// GradeDetailEntry is one fully-joined grade row in the principal detail view.
type GradeDetailEntry struct {
	ExamID      string  `json:"exam_id"`
	ExamName    string  `json:"exam_name"`
	SubjectCode string  `json:"subject_code"`
	SubjectName string  `json:"subject_name"`
	StudentNo   string  `json:"student_no"`
	StudentName string  `json:"student_name"`
	ClassName   string  `json:"class_name"`
	Score       float64 `json:"score"`
	Published   bool    `json:"published"`
}

// DetailFilters narrows principal detail and export queries. Empty fields
// match everything.
type DetailFilters struct {
	ExamID      string
	ClassName   string
	SubjectCode string
}

// StatsService covers the principal's read-only aggregate views.
type StatsService interface {
	// Overview aggregates all recorded scores (published or not) per
	// (exam, subject); pairs with no scores produce no entry.
	Overview(ctx context.Context, actor domain.Actor, examID string) ([]OverviewEntry, error)
	GradeDetails(ctx context.Context, actor domain.Actor, filters DetailFilters) ([]GradeDetailEntry, error)
	// ExportRows returns the filtered detail rows for CSV formatting and
	// records an export audit entry.
	ExportRows(ctx context.Context, actor domain.Actor, filters DetailFilters) ([]ExportRow, error)
}

// AuditService exposes the audit log, filtered by the caller's role.
type AuditService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.AuditEntry, error)
}
