package service

import (
	"context"

	"github.com/schoolworks/gradebook/internal/core/domain"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

// AuditService exposes the audit log with role-based filtering: the
// principal sees everything, a teacher sees their own actions plus grade
// lifecycle actions on their subjects, students see nothing.
type AuditService struct {
	audit ports.AuditStore
}

func NewAuditService(audit ports.AuditStore) *AuditService {
	return &AuditService{audit: audit}
}

func (s *AuditService) List(ctx context.Context, actor domain.Actor) ([]domain.AuditEntry, error) {
	switch actor.Account.Role {
	case domain.RolePrincipal:
		return s.audit.List(ctx), nil
	case domain.RoleTeacher:
		if actor.Teacher == nil {
			return nil, domain.ErrForbidden
		}
		visible := make([]domain.AuditEntry, 0)
		for _, entry := range s.audit.List(ctx) {
			if entry.VisibleToTeacher(actor.Teacher) {
				visible = append(visible, entry)
			}
		}
		return visible, nil
	default:
		return nil, domain.ErrForbidden
	}
}
