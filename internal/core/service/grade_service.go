package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

// GradeService implements the student- and teacher-facing grade operations
// on top of the grade ledger.
type GradeService struct {
	grades ports.GradeStore
	refs   ports.ReferenceStore
	audit  ports.AuditStore
	log    zerolog.Logger
}

func NewGradeService(
	grades ports.GradeStore,
	refs ports.ReferenceStore,
	audit ports.AuditStore,
	log zerolog.Logger,
) *GradeService {
	return &GradeService{grades: grades, refs: refs, audit: audit, log: log}
}

// teacherBinding returns the actor's teacher record, or ErrForbidden when
// the actor is not a teacher or the binding is missing.
func teacherBinding(actor domain.Actor) (*domain.Teacher, error) {
	if actor.Account.Role != domain.RoleTeacher || actor.Teacher == nil {
		return nil, domain.ErrForbidden
	}
	return actor.Teacher, nil
}

// ListStudentGrades returns the actor's own published grades with exam and
// subject names joined and the class average alongside each score, sorted by
// exam date then subject. The unread-notification flag is read and cleared
// in the same call.
func (s *GradeService) ListStudentGrades(ctx context.Context, actor domain.Actor, term, examID string) (*ports.StudentGradesResult, error) {
	if actor.Account.Role != domain.RoleStudent {
		return nil, domain.ErrForbidden
	}
	student := actor.Student
	if student == nil {
		return nil, fmt.Errorf("student binding: %w", domain.ErrNotFound)
	}

	all := s.grades.List(ctx)
	views := make([]ports.StudentGradeView, 0)
	for _, grade := range all {
		if grade.StudentNo != student.StudentNo || !grade.Published {
			continue
		}
		exam, ok := s.refs.Exam(ctx, grade.ExamID)
		if !ok {
			continue
		}
		if term != "" && exam.Term != term {
			continue
		}
		if examID != "" && grade.ExamID != examID {
			continue
		}

		subjectName := grade.SubjectCode
		if subject, ok := s.refs.Subject(ctx, grade.SubjectCode); ok {
			subjectName = subject.Name
		}

		views = append(views, ports.StudentGradeView{
			ExamID:       grade.ExamID,
			ExamName:     exam.Name,
			ExamDate:     exam.Date,
			SubjectCode:  grade.SubjectCode,
			SubjectName:  subjectName,
			Score:        grade.Score,
			ClassAverage: s.classAverage(ctx, all, grade, student.ClassName),
		})
	}

	sort.Slice(views, func(i, j int) bool {
		if !views[i].ExamDate.Equal(views[j].ExamDate) {
			return views[i].ExamDate.Before(views[j].ExamDate)
		}
		return views[i].SubjectCode < views[j].SubjectCode
	})

	return &ports.StudentGradesResult{
		HasUnread: s.grades.TakeUnread(ctx, student.StudentNo),
		Grades:    views,
	}, nil
}

// classAverage computes the mean score for grade's (exam, subject) over
// classmates of className. The caller's own grade is always part of the set,
// so the fallback to grade.Score only covers inconsistent rosters.
func (s *GradeService) classAverage(ctx context.Context, all []domain.Grade, grade domain.Grade, className string) float64 {
	var sum float64
	var n int
	for _, g := range all {
		if g.ExamID != grade.ExamID || g.SubjectCode != grade.SubjectCode {
			continue
		}
		owner, ok := s.refs.Student(ctx, g.StudentNo)
		if !ok || owner.ClassName != className {
			continue
		}
		sum += g.Score
		n++
	}
	if n == 0 {
		return grade.Score
	}
	return domain.Round2(sum / float64(n))
}

// UpsertGrade is the single mutation path for grade writes. Preconditions
// run in order: exam, subject and student existence, then teacher scope,
// then score range. The score is rounded to one decimal before storage and
// every write appends an audit entry.
func (s *GradeService) UpsertGrade(ctx context.Context, actor domain.Actor, examID, subjectCode, studentNo string, score float64) (*domain.Grade, error) {
	teacher, err := teacherBinding(actor)
	if err != nil {
		return nil, err
	}
	if _, ok := s.refs.Exam(ctx, examID); !ok {
		return nil, fmt.Errorf("exam %q: %w", examID, domain.ErrNotFound)
	}
	if _, ok := s.refs.Subject(ctx, subjectCode); !ok {
		return nil, fmt.Errorf("subject %q: %w", subjectCode, domain.ErrNotFound)
	}
	student, ok := s.refs.Student(ctx, studentNo)
	if !ok {
		return nil, fmt.Errorf("student %q: %w", studentNo, domain.ErrNotFound)
	}
	if err := actor.AuthorizeGradeWrite(subjectCode, student.ClassName); err != nil {
		return nil, err
	}
	if !domain.ValidScore(score) {
		return nil, fmt.Errorf("score %v: %w", score, domain.ErrInvalidScore)
	}

	key := domain.GradeKey{ExamID: examID, SubjectCode: subjectCode, StudentNo: studentNo}
	now := time.Now().UTC()
	result := s.grades.Upsert(ctx, key, domain.RoundScore(score), teacher.TeacherID, now)

	if result.Created {
		s.audit.Record(ctx, domain.AuditEntry{
			Timestamp: now,
			Actor:     teacher.TeacherID,
			Action:    domain.AuditGradeCreated,
			Details: map[string]any{
				"exam_id":      examID,
				"subject_code": subjectCode,
				"student_no":   studentNo,
				"score":        result.Grade.Score,
			},
		})
	} else {
		s.audit.Record(ctx, domain.AuditEntry{
			Timestamp: now,
			Actor:     teacher.TeacherID,
			Action:    domain.AuditGradeUpdated,
			Details: map[string]any{
				"exam_id":      examID,
				"subject_code": subjectCode,
				"student_no":   studentNo,
				"old_score":    result.OldScore,
				"new_score":    result.Grade.Score,
			},
		})
	}

	s.log.Info().
		Str("teacher_id", teacher.TeacherID).
		Str("exam_id", examID).
		Str("subject_code", subjectCode).
		Str("student_no", studentNo).
		Bool("created", result.Created).
		Msg("grade upserted")

	grade := result.Grade
	return &grade, nil
}

// BulkImport routes every row through UpsertGrade. Malformed or rejected
// rows are collected as line-indexed errors; the batch never aborts.
func (s *GradeService) BulkImport(ctx context.Context, actor domain.Actor, rows []ports.ImportRow) (*ports.ImportResult, error) {
	if _, err := teacherBinding(actor); err != nil {
		return nil, err
	}

	result := &ports.ImportResult{Errors: []ports.RowError{}}
	for _, row := range rows {
		examID := strings.TrimSpace(row.ExamID)
		subjectCode := strings.TrimSpace(row.SubjectCode)
		studentNo := strings.TrimSpace(row.StudentNo)
		scoreText := strings.TrimSpace(row.Score)
		if examID == "" || subjectCode == "" || studentNo == "" || scoreText == "" {
			result.Errors = append(result.Errors, ports.RowError{Line: row.Line, Message: "missing required field"})
			continue
		}
		score, err := strconv.ParseFloat(scoreText, 64)
		if err != nil {
			result.Errors = append(result.Errors, ports.RowError{Line: row.Line, Message: fmt.Sprintf("invalid score %q", scoreText)})
			continue
		}
		if _, err := s.UpsertGrade(ctx, actor, examID, subjectCode, studentNo, score); err != nil {
			result.Errors = append(result.Errors, ports.RowError{Line: row.Line, Message: err.Error()})
			continue
		}
		result.Processed++
	}

	s.log.Info().
		Int("processed", result.Processed).
		Int("errors", len(result.Errors)).
		Msg("bulk import finished")

	return result, nil
}

// visibleGrades returns the grades within the teacher's subject and class
// scope, regardless of published state.
func (s *GradeService) visibleGrades(ctx context.Context, teacher *domain.Teacher) []domain.Grade {
	out := make([]domain.Grade, 0)
	for _, grade := range s.grades.List(ctx) {
		if !teacher.OwnsSubject(grade.SubjectCode) {
			continue
		}
		student, ok := s.refs.Student(ctx, grade.StudentNo)
		if !ok || !teacher.TeachesClass(student.ClassName) {
			continue
		}
		out = append(out, grade)
	}
	return out
}

// ListTeacherGrades lists the teacher's visible grades with student data
// joined, optionally filtered by exam and class, in the requested order.
func (s *GradeService) ListTeacherGrades(ctx context.Context, actor domain.Actor, examID, className, sortBy string) ([]ports.TeacherGradeView, error) {
	teacher, err := teacherBinding(actor)
	if err != nil {
		return nil, err
	}

	views := make([]ports.TeacherGradeView, 0)
	for _, grade := range s.visibleGrades(ctx, teacher) {
		if examID != "" && grade.ExamID != examID {
			continue
		}
		student, ok := s.refs.Student(ctx, grade.StudentNo)
		if !ok {
			continue
		}
		if className != "" && student.ClassName != className {
			continue
		}
		views = append(views, ports.TeacherGradeView{
			StudentNo:   grade.StudentNo,
			StudentName: student.Name,
			ClassName:   student.ClassName,
			SubjectCode: grade.SubjectCode,
			Score:       grade.Score,
			Published:   grade.Published,
		})
	}

	switch sortBy {
	case ports.SortByScoreDesc:
		sort.Slice(views, func(i, j int) bool { return views[i].Score > views[j].Score })
	case ports.SortByScoreAsc:
		sort.Slice(views, func(i, j int) bool { return views[i].Score < views[j].Score })
	default:
		sort.Slice(views, func(i, j int) bool {
			if views[i].StudentNo != views[j].StudentNo {
				return views[i].StudentNo < views[j].StudentNo
			}
			return views[i].SubjectCode < views[j].SubjectCode
		})
	}
	return views, nil
}

// Publish marks all of the teacher's in-scope grades for (examID,
// subjectCode) as published. Newly published grades set their student's
// unread flag; already-published grades count toward the returned total but
// transition nothing. Zero matching grades is an error.
func (s *GradeService) Publish(ctx context.Context, actor domain.Actor, examID, subjectCode string) (int, error) {
	teacher, err := teacherBinding(actor)
	if err != nil {
		return 0, err
	}
	if err := actor.AuthorizePublish(subjectCode); err != nil {
		return 0, err
	}
	if _, ok := s.refs.Exam(ctx, examID); !ok {
		return 0, fmt.Errorf("exam %q: %w", examID, domain.ErrNotFound)
	}

	total, newly := s.grades.PublishMatching(ctx, examID, subjectCode, func(studentNo string) bool {
		student, ok := s.refs.Student(ctx, studentNo)
		return ok && teacher.TeachesClass(student.ClassName)
	})
	if total == 0 {
		return 0, domain.ErrNoMatchingRecords
	}

	now := time.Now().UTC()
	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: now,
		Actor:     teacher.TeacherID,
		Action:    domain.AuditGradePublished,
		Details: map[string]any{
			"exam_id":      examID,
			"subject_code": subjectCode,
			"count":        total,
		},
	})

	s.log.Info().
		Str("teacher_id", teacher.TeacherID).
		Str("exam_id", examID).
		Str("subject_code", subjectCode).
		Int("total", total).
		Int("newly_published", newly).
		Msg("grades published")

	return total, nil
}

// TeacherExportRows returns the teacher's visible grades as fully-joined
// export rows and records the export in the audit log. CSV formatting is
// left to the caller.
func (s *GradeService) TeacherExportRows(ctx context.Context, actor domain.Actor, examID, className string) ([]ports.ExportRow, error) {
	teacher, err := teacherBinding(actor)
	if err != nil {
		return nil, err
	}

	rows := make([]ports.ExportRow, 0)
	for _, grade := range s.visibleGrades(ctx, teacher) {
		if examID != "" && grade.ExamID != examID {
			continue
		}
		student, ok := s.refs.Student(ctx, grade.StudentNo)
		if !ok {
			continue
		}
		if className != "" && student.ClassName != className {
			continue
		}
		rows = append(rows, s.exportRow(ctx, grade, student))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StudentNo != rows[j].StudentNo {
			return rows[i].StudentNo < rows[j].StudentNo
		}
		return rows[i].SubjectName < rows[j].SubjectName
	})

	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Actor:     teacher.TeacherID,
		Action:    domain.AuditExport,
		Details: map[string]any{
			"scope":      "teacher",
			"exam_id":    examID,
			"class_name": className,
		},
	})
	return rows, nil
}

// exportRow joins a grade with its reference data, falling back to raw codes
// when a lookup fails.
func (s *GradeService) exportRow(ctx context.Context, grade domain.Grade, student *domain.Student) ports.ExportRow {
	examName := grade.ExamID
	if exam, ok := s.refs.Exam(ctx, grade.ExamID); ok {
		examName = exam.Name
	}
	subjectName := grade.SubjectCode
	if subject, ok := s.refs.Subject(ctx, grade.SubjectCode); ok {
		subjectName = subject.Name
	}
	return ports.ExportRow{
		ExamName:    examName,
		SubjectName: subjectName,
		StudentNo:   grade.StudentNo,
		StudentName: student.Name,
		ClassName:   student.ClassName,
		Score:       grade.Score,
		Published:   grade.Published,
	}
}
