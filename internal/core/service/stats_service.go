package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

// StatsService implements the principal's read-only aggregate views over
// the grade ledger.
type StatsService struct {
	grades ports.GradeStore
	refs   ports.ReferenceStore
	audit  ports.AuditStore
	log    zerolog.Logger
}

func NewStatsService(
	grades ports.GradeStore,
	refs ports.ReferenceStore,
	audit ports.AuditStore,
	log zerolog.Logger,
) *StatsService {
	return &StatsService{grades: grades, refs: refs, audit: audit, log: log}
}

func requirePrincipal(actor domain.Actor) error {
	if actor.Account.Role != domain.RolePrincipal {
		return domain.ErrForbidden
	}
	return nil
}

// Overview aggregates all recorded scores, published or not, per
// (exam, subject). Pairs with no scores produce no entry.
func (s *StatsService) Overview(ctx context.Context, actor domain.Actor, examID string) ([]ports.OverviewEntry, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}

	exams := s.refs.Exams(ctx)
	if examID != "" {
		exam, ok := s.refs.Exam(ctx, examID)
		if !ok {
			return nil, domain.ErrNotFound
		}
		exams = []domain.Exam{*exam}
	}

	all := s.grades.List(ctx)
	entries := make([]ports.OverviewEntry, 0)
	for _, exam := range exams {
		for _, subject := range s.refs.Subjects(ctx) {
			var scores []float64
			for _, grade := range all {
				if grade.ExamID == exam.ExamID && grade.SubjectCode == subject.Code {
					scores = append(scores, grade.Score)
				}
			}
			stats, ok := domain.AggregateScores(scores)
			if !ok {
				continue
			}
			entries = append(entries, ports.OverviewEntry{
				ExamID:      exam.ExamID,
				ExamName:    exam.Name,
				SubjectCode: subject.Code,
				SubjectName: subject.Name,
				Stats:       stats,
			})
		}
	}
	return entries, nil
}

// GradeDetails lists fully-joined grade rows matching filters. Principal
// read is unrestricted, published state included as data.
func (s *StatsService) GradeDetails(ctx context.Context, actor domain.Actor, filters ports.DetailFilters) ([]ports.GradeDetailEntry, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}

	entries := make([]ports.GradeDetailEntry, 0)
	for _, grade := range s.grades.List(ctx) {
		if filters.ExamID != "" && grade.ExamID != filters.ExamID {
			continue
		}
		if filters.SubjectCode != "" && grade.SubjectCode != filters.SubjectCode {
			continue
		}
		student, ok := s.refs.Student(ctx, grade.StudentNo)
		if !ok {
			continue
		}
		if filters.ClassName != "" && student.ClassName != filters.ClassName {
			continue
		}

		examName := grade.ExamID
		if exam, ok := s.refs.Exam(ctx, grade.ExamID); ok {
			examName = exam.Name
		}
		subjectName := grade.SubjectCode
		if subject, ok := s.refs.Subject(ctx, grade.SubjectCode); ok {
			subjectName = subject.Name
		}

		entries = append(entries, ports.GradeDetailEntry{
			ExamID:      grade.ExamID,
			ExamName:    examName,
			SubjectCode: grade.SubjectCode,
			SubjectName: subjectName,
			StudentNo:   grade.StudentNo,
			StudentName: student.Name,
			ClassName:   student.ClassName,
			Score:       grade.Score,
			Published:   grade.Published,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StudentNo != entries[j].StudentNo {
			return entries[i].StudentNo < entries[j].StudentNo
		}
		return entries[i].SubjectCode < entries[j].SubjectCode
	})
	return entries, nil
}

// ExportRows returns the filtered detail rows for CSV formatting and
// records the export in the audit log.
func (s *StatsService) ExportRows(ctx context.Context, actor domain.Actor, filters ports.DetailFilters) ([]ports.ExportRow, error) {
	entries, err := s.GradeDetails(ctx, actor, filters)
	if err != nil {
		return nil, err
	}

	rows := make([]ports.ExportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ports.ExportRow{
			ExamName:    e.ExamName,
			SubjectName: e.SubjectName,
			StudentNo:   e.StudentNo,
			StudentName: e.StudentName,
			ClassName:   e.ClassName,
			Score:       e.Score,
			Published:   e.Published,
		})
	}

	s.audit.Record(ctx, domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Account.Username,
		Action:    domain.AuditExport,
		Details: map[string]any{
			"scope":        "principal",
			"exam_id":      filters.ExamID,
			"class_name":   filters.ClassName,
			"subject_code": filters.SubjectCode,
		},
	})
	s.log.Info().Str("actor", actor.Account.Username).Int("rows", len(rows)).Msg("principal export")

	return rows, nil
}
