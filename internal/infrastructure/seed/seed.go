// Package seed loads the demo school dataset: two classes of three
// students, three single-subject teachers, one published midterm exam with
// a full set of published grades, and login accounts for every actor.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/infrastructure/memory"
	"github.com/schoolworks/gradebook/internal/pkg/security"
)

// InitialPassword is the password every demo account starts with. Accounts
// are created with the force-change flag set.
const InitialPassword = "Pass@123"

// Stores groups the stores the seeder populates.
type Stores struct {
	Accounts *memory.AccountStore
	Grades   *memory.GradeStore
	Refs     *memory.ReferenceStore
}

// Load populates the stores with the demo dataset. Grades are seeded as
// already published, so student views have content on first login.
func Load(ctx context.Context, s Stores) error {
	for _, st := range []domain.Student{
		{StudentNo: "S001", Name: "张三", ClassName: "Class 1", Status: "在读"},
		{StudentNo: "S002", Name: "李四", ClassName: "Class 1", Status: "在读"},
		{StudentNo: "S003", Name: "王五", ClassName: "Class 1", Status: "在读"},
		{StudentNo: "S004", Name: "赵六", ClassName: "Class 2", Status: "在读"},
		{StudentNo: "S005", Name: "孙七", ClassName: "Class 2", Status: "在读"},
		{StudentNo: "S006", Name: "周八", ClassName: "Class 2", Status: "在读"},
	} {
		s.Refs.AddStudent(st)
	}

	for _, sub := range []domain.Subject{
		{Code: "CHN", Name: "语文"},
		{Code: "MTH", Name: "数学"},
		{Code: "ENG", Name: "英语"},
	} {
		s.Refs.AddSubject(sub)
	}

	teachers := []domain.Teacher{
		{TeacherID: "T100", Name: "陈老师", Subjects: []string{"CHN"}, Classes: []string{"Class 1", "Class 2"}},
		{TeacherID: "T200", Name: "刘老师", Subjects: []string{"MTH"}, Classes: []string{"Class 1", "Class 2"}},
		{TeacherID: "T300", Name: "吴老师", Subjects: []string{"ENG"}, Classes: []string{"Class 1", "Class 2"}},
	}
	for _, t := range teachers {
		s.Refs.AddTeacher(t)
	}

	s.Refs.AddExam(domain.Exam{
		ExamID:  "EX2025M",
		Name:    "2025-上学期-期中考试",
		Term:    "2025-上",
		Date:    time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		Classes: []string{"Class 1", "Class 2"},
		Status:  domain.ExamPublished,
	})

	if err := seedAccounts(ctx, s.Accounts); err != nil {
		return err
	}
	seedGrades(ctx, s.Grades, teachers)
	return nil
}

func seedAccounts(ctx context.Context, accounts *memory.AccountStore) error {
	hash, err := security.HashPassword(InitialPassword)
	if err != nil {
		return fmt.Errorf("seed: hash initial password: %w", err)
	}

	demo := []domain.Account{
		{Username: "principal", Role: domain.RolePrincipal},
		{Username: "t_chn", Role: domain.RoleTeacher, BindID: "T100"},
		{Username: "t_mth", Role: domain.RoleTeacher, BindID: "T200"},
		{Username: "t_eng", Role: domain.RoleTeacher, BindID: "T300"},
		{Username: "s_s001", Role: domain.RoleStudent, BindID: "S001"},
		{Username: "s_s002", Role: domain.RoleStudent, BindID: "S002"},
		{Username: "s_s003", Role: domain.RoleStudent, BindID: "S003"},
		{Username: "s_s004", Role: domain.RoleStudent, BindID: "S004"},
		{Username: "s_s005", Role: domain.RoleStudent, BindID: "S005"},
		{Username: "s_s006", Role: domain.RoleStudent, BindID: "S006"},
	}
	for _, a := range demo {
		a.PasswordHash = hash
		a.ForcePasswordChange = true
		account := a
		if err := accounts.Create(ctx, &account); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

func seedGrades(ctx context.Context, grades *memory.GradeStore, teachers []domain.Teacher) {
	scores := map[domain.GradeKey]float64{
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S001"}: 88,
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S002"}: 76,
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S003"}: 92,
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S004"}: 81,
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S005"}: 67,
		{ExamID: "EX2025M", SubjectCode: "CHN", StudentNo: "S006"}: 85,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S001"}: 95,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S002"}: 82,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S003"}: 78,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S004"}: 88,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S005"}: 73,
		{ExamID: "EX2025M", SubjectCode: "MTH", StudentNo: "S006"}: 90,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S001"}: 84,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S002"}: 79,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S003"}: 91,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S004"}: 86,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S005"}: 72,
		{ExamID: "EX2025M", SubjectCode: "ENG", StudentNo: "S006"}: 88,
	}

	bySubject := make(map[string]string, len(teachers))
	for _, t := range teachers {
		for _, code := range t.Subjects {
			bySubject[code] = t.TeacherID
		}
	}

	now := time.Now().UTC()
	for key, score := range scores {
		grades.Upsert(ctx, key, score, bySubject[key.SubjectCode], now)
	}
	// Publish without touching unread flags: the seed predates any login.
	for _, code := range []string{"CHN", "MTH", "ENG"} {
		grades.PublishMatching(ctx, "EX2025M", code, func(string) bool { return true })
	}
	for _, st := range []string{"S001", "S002", "S003", "S004", "S005", "S006"} {
		grades.TakeUnread(ctx, st)
	}
}
