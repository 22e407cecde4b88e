package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/schoolworks/gradebook/internal/core/domain"
)

// ReferenceStore holds the school reference data. It is populated once at
// startup and read-only afterwards; the mutex only guards against a racing
// seed during tests.
type ReferenceStore struct {
	mu       sync.RWMutex
	students map[string]domain.Student
	teachers map[string]domain.Teacher
	subjects map[string]domain.Subject
	exams    map[string]domain.Exam
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		students: make(map[string]domain.Student),
		teachers: make(map[string]domain.Teacher),
		subjects: make(map[string]domain.Subject),
		exams:    make(map[string]domain.Exam),
	}
}

func (s *ReferenceStore) AddStudent(st domain.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[st.StudentNo] = st
}

func (s *ReferenceStore) AddTeacher(t domain.Teacher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers[t.TeacherID] = t
}

func (s *ReferenceStore) AddSubject(sub domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[sub.Code] = sub
}

func (s *ReferenceStore) AddExam(e domain.Exam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exams[e.ExamID] = e
}

func (s *ReferenceStore) Student(_ context.Context, studentNo string) (*domain.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[studentNo]
	if !ok {
		return nil, false
	}
	return &st, true
}

func (s *ReferenceStore) Teacher(_ context.Context, teacherID string) (*domain.Teacher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teachers[teacherID]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (s *ReferenceStore) Subject(_ context.Context, code string) (*domain.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subjects[code]
	if !ok {
		return nil, false
	}
	return &sub, true
}

func (s *ReferenceStore) Exam(_ context.Context, examID string) (*domain.Exam, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exams[examID]
	if !ok {
		return nil, false
	}
	return &e, true
}

func (s *ReferenceStore) Students(_ context.Context) []domain.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentNo < out[j].StudentNo })
	return out
}

func (s *ReferenceStore) Subjects(_ context.Context) []domain.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *ReferenceStore) Exams(_ context.Context) []domain.Exam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Exam, 0, len(s.exams))
	for _, e := range s.exams {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExamID < out[j].ExamID })
	return out
}
