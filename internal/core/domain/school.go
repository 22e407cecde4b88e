package domain

import "time"

// Student is read-mostly reference data. The unread-notification flag lives
// in the grade ledger store, not here, so that flag updates share the
// ledger's critical section.
type Student struct {
	StudentNo string `json:"student_no"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	Status    string `json:"status"`
}

// Teacher defines the write/read scope for grade operations: the subjects
// the teacher owns and the classes they teach.
type Teacher struct {
	TeacherID string   `json:"teacher_id"`
	Name      string   `json:"name"`
	Subjects  []string `json:"subjects"`
	Classes   []string `json:"classes"`
}

// OwnsSubject reports whether code is within the teacher's subject scope.
func (t *Teacher) OwnsSubject(code string) bool {
	for _, s := range t.Subjects {
		if s == code {
			return true
		}
	}
	return false
}

// TeachesClass reports whether className is within the teacher's class scope.
func (t *Teacher) TeachesClass(className string) bool {
	for _, c := range t.Classes {
		if c == className {
			return true
		}
	}
	return false
}

// Subject is immutable reference data.
type Subject struct {
	Code string `json:"subject_code"`
	Name string `json:"subject_name"`
}

// ExamStatus is the lifecycle state of an exam definition.
type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
)

// Exam is immutable reference data describing one sitting.
type Exam struct {
	ExamID  string     `json:"exam_id"`
	Name    string     `json:"exam_name"`
	Term    string     `json:"term"`
	Date    time.Time  `json:"exam_date"`
	Classes []string   `json:"classes"`
	Status  ExamStatus `json:"status"`
}
