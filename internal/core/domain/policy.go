package domain

// Actor is an authenticated account with its binding resolved: exactly one
// of Student/Teacher is set for those roles, neither for the principal.
// Resolving the binding up front lets the policy functions below stay pure.
type Actor struct {
	Account Account
	Student *Student
	Teacher *Teacher
}

// CanViewGrade decides read visibility of a single grade. owner is the
// student the grade belongs to.
func (a Actor) CanViewGrade(g *Grade, owner *Student) bool {
	switch a.Account.Role {
	case RoleStudent:
		return a.Student != nil && g.StudentNo == a.Student.StudentNo && g.Published
	case RoleTeacher:
		return a.Teacher != nil &&
			a.Teacher.OwnsSubject(g.SubjectCode) &&
			owner != nil && a.Teacher.TeachesClass(owner.ClassName)
	case RolePrincipal:
		return true
	}
	return false
}

// AuthorizeGradeWrite decides whether the actor may create or update a grade
// for the given subject and the owning student's class. Only teachers hold
// write capability; a scope violation yields a bare ErrForbidden so nothing
// about the record leaks.
func (a Actor) AuthorizeGradeWrite(subjectCode, className string) error {
	if a.Account.Role != RoleTeacher || a.Teacher == nil {
		return ErrForbidden
	}
	if !a.Teacher.OwnsSubject(subjectCode) {
		return ErrForbidden
	}
	if !a.Teacher.TeachesClass(className) {
		return ErrForbidden
	}
	return nil
}

// AuthorizePublish decides whether the actor may publish grades for a
// subject. Class scope is applied per grade during the publish sweep.
func (a Actor) AuthorizePublish(subjectCode string) error {
	if a.Account.Role != RoleTeacher || a.Teacher == nil {
		return ErrForbidden
	}
	if !a.Teacher.OwnsSubject(subjectCode) {
		return ErrForbidden
	}
	return nil
}
