package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/infrastructure/memory"
	"github.com/schoolworks/gradebook/internal/pkg/security"
)

const testPassword = "Pass@123"

var (
	testHashOnce sync.Once
	testHash     string
)

// passwordHash returns a PBKDF2 hash of testPassword, computed once per test
// binary since key derivation is deliberately slow.
func passwordHash() string {
	testHashOnce.Do(func() {
		h, err := security.HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

// testEnv wires real in-memory stores and services around a small school:
// two classes of three students, three single-subject teachers, one exam.
type testEnv struct {
	accounts *memory.AccountStore
	sessions *memory.SessionStore
	grades   *memory.GradeStore
	audit    *memory.AuditStore
	refs     *memory.ReferenceStore

	auth     *AuthService
	gradeSvc *GradeService
	stats    *StatsService
	auditSvc *AuditService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		accounts: memory.NewAccountStore(),
		sessions: memory.NewSessionStore(),
		grades:   memory.NewGradeStore(),
		audit:    memory.NewAuditStore(),
		refs:     memory.NewReferenceStore(),
	}

	for _, st := range []domain.Student{
		{StudentNo: "S001", Name: "Zhang San", ClassName: "Class 1", Status: "enrolled"},
		{StudentNo: "S002", Name: "Li Si", ClassName: "Class 1", Status: "enrolled"},
		{StudentNo: "S003", Name: "Wang Wu", ClassName: "Class 1", Status: "enrolled"},
		{StudentNo: "S004", Name: "Zhao Liu", ClassName: "Class 2", Status: "enrolled"},
		{StudentNo: "S005", Name: "Sun Qi", ClassName: "Class 2", Status: "enrolled"},
		{StudentNo: "S006", Name: "Zhou Ba", ClassName: "Class 2", Status: "enrolled"},
	} {
		env.refs.AddStudent(st)
	}
	for _, t := range []domain.Teacher{
		{TeacherID: "T100", Name: "Teacher Chen", Subjects: []string{"CHN"}, Classes: []string{"Class 1", "Class 2"}},
		{TeacherID: "T200", Name: "Teacher Liu", Subjects: []string{"MTH"}, Classes: []string{"Class 1", "Class 2"}},
		{TeacherID: "T300", Name: "Teacher Wu", Subjects: []string{"ENG"}, Classes: []string{"Class 1"}},
	} {
		env.refs.AddTeacher(t)
	}
	for _, sub := range []domain.Subject{
		{Code: "CHN", Name: "Chinese"},
		{Code: "MTH", Name: "Mathematics"},
		{Code: "ENG", Name: "English"},
	} {
		env.refs.AddSubject(sub)
	}
	env.refs.AddExam(domain.Exam{
		ExamID:  "EX2025M",
		Name:    "2025 Midterm",
		Term:    "2025-1",
		Date:    time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		Classes: []string{"Class 1", "Class 2"},
		Status:  domain.ExamPublished,
	})

	hash := passwordHash()
	ctx := context.Background()
	for _, a := range []domain.Account{
		{Username: "principal", Role: domain.RolePrincipal, PasswordHash: hash, ForcePasswordChange: true},
		{Username: "t_chn", Role: domain.RoleTeacher, BindID: "T100", PasswordHash: hash, ForcePasswordChange: true},
		{Username: "t_mth", Role: domain.RoleTeacher, BindID: "T200", PasswordHash: hash, ForcePasswordChange: true},
		{Username: "t_eng", Role: domain.RoleTeacher, BindID: "T300", PasswordHash: hash, ForcePasswordChange: true},
		{Username: "s_s001", Role: domain.RoleStudent, BindID: "S001", PasswordHash: hash, ForcePasswordChange: true},
		{Username: "s_s004", Role: domain.RoleStudent, BindID: "S004", PasswordHash: hash, ForcePasswordChange: true},
	} {
		account := a
		if err := env.accounts.Create(ctx, &account); err != nil {
			panic(err)
		}
	}

	log := zerolog.Nop()
	env.auth = NewAuthService(env.accounts, env.sessions, env.refs, env.audit, log)
	env.gradeSvc = NewGradeService(env.grades, env.refs, env.audit, log)
	env.stats = NewStatsService(env.grades, env.refs, env.audit, log)
	env.auditSvc = NewAuditService(env.audit)
	return env
}

// actor builds a resolved actor for username without going through a login.
func (env *testEnv) actor(username string) domain.Actor {
	ctx := context.Background()
	account, err := env.accounts.Find(ctx, username)
	if err != nil {
		panic(err)
	}
	actor := domain.Actor{Account: *account}
	switch account.Role {
	case domain.RoleStudent:
		if st, ok := env.refs.Student(ctx, account.BindID); ok {
			actor.Student = st
		}
	case domain.RoleTeacher:
		if t, ok := env.refs.Teacher(ctx, account.BindID); ok {
			actor.Teacher = t
		}
	}
	return actor
}

// mustUpsert seeds one grade through the regular mutation path.
func (env *testEnv) mustUpsert(username, examID, subject, studentNo string, score float64) *domain.Grade {
	grade, err := env.gradeSvc.UpsertGrade(context.Background(), env.actor(username), examID, subject, studentNo, score)
	if err != nil {
		panic(err)
	}
	return grade
}
