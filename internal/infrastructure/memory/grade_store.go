package memory

import (
	"context"
	"sync"
	"time"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

// GradeStore is the authoritative grade ledger. The per-student unread
// flags live here too: a publish transition and the flag it sets must fall
// inside one critical section.
type GradeStore struct {
	mu     sync.RWMutex
	grades map[domain.GradeKey]*domain.Grade
	unread map[string]bool // studentNo -> has unread published grades
}

func NewGradeStore() *GradeStore {
	return &GradeStore{
		grades: make(map[domain.GradeKey]*domain.Grade),
		unread: make(map[string]bool),
	}
}

// Upsert creates an unpublished grade at key or updates the existing one in
// place. CreatedAt and Published are preserved on update; score, UpdatedAt
// and CreatedBy are overwritten.
func (s *GradeStore) Upsert(_ context.Context, key domain.GradeKey, score float64, teacherID string, now time.Time) ports.GradeUpsert {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.grades[key]; ok {
		old := existing.Score
		existing.Score = score
		existing.UpdatedAt = now
		existing.CreatedBy = teacherID
		return ports.GradeUpsert{Grade: *existing, OldScore: old}
	}

	grade := &domain.Grade{
		ExamID:      key.ExamID,
		SubjectCode: key.SubjectCode,
		StudentNo:   key.StudentNo,
		Score:       score,
		CreatedBy:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.grades[key] = grade
	return ports.GradeUpsert{Grade: *grade, Created: true}
}

func (s *GradeStore) Get(_ context.Context, key domain.GradeKey) (domain.Grade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grade, ok := s.grades[key]
	if !ok {
		return domain.Grade{}, false
	}
	return *grade, true
}

// List returns a snapshot copy of every grade; callers filter freely without
// holding the lock.
func (s *GradeStore) List(_ context.Context) []domain.Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Grade, 0, len(s.grades))
	for _, grade := range s.grades {
		out = append(out, *grade)
	}
	return out
}

// PublishMatching publishes all grades for (examID, subjectCode) whose
// student satisfies inScope. The unread flag is set only for grades that
// newly transition to published; already-published grades still count
// toward total. Publish is monotonic: nothing here ever clears Published.
func (s *GradeStore) PublishMatching(_ context.Context, examID, subjectCode string, inScope func(studentNo string) bool) (total int, newlyPublished int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, grade := range s.grades {
		if key.ExamID != examID || key.SubjectCode != subjectCode {
			continue
		}
		if !inScope(key.StudentNo) {
			continue
		}
		total++
		if !grade.Published {
			grade.Published = true
			s.unread[key.StudentNo] = true
			newlyPublished++
		}
	}
	return total, newlyPublished
}

// TakeUnread atomically reads and clears the student's unread flag.
func (s *GradeStore) TakeUnread(_ context.Context, studentNo string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.unread[studentNo]
	delete(s.unread, studentNo)
	return was
}
