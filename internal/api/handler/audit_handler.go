package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/core/ports"
)

type AuditHandler struct {
	auditService ports.AuditService
}

func NewAuditHandler(auditService ports.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns the audit trail visible to the caller: principals see
// everything, teachers only their own actions plus grade actions on their
// subjects.
//
// @Summary      List audit log entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.AuditEntry
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	entries, err := h.auditService.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
