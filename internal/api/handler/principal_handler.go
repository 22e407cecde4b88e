package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/api/metrics"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

type PrincipalHandler struct {
	statsService ports.StatsService
}

func NewPrincipalHandler(statsService ports.StatsService) *PrincipalHandler {
	return &PrincipalHandler{statsService: statsService}
}

func detailFilters(c echo.Context) ports.DetailFilters {
	return ports.DetailFilters{
		ExamID:      c.QueryParam("exam_id"),
		ClassName:   c.QueryParam("class_name"),
		SubjectCode: c.QueryParam("subject_code"),
	}
}

// Overview returns highest/lowest/average/pass-rate per (exam, subject).
//
// @Summary      Aggregate statistics
// @Tags         principal
// @Produce      json
// @Security     BearerAuth
// @Param        exam_id  query  string  false  "Exam filter"
// @Success      200  {array}  ports.OverviewEntry
// @Router       /principal/overview [get]
func (h *PrincipalHandler) Overview(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	entries, err := h.statsService.Overview(c.Request().Context(), actor, c.QueryParam("exam_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Details returns fully-joined grade rows across the whole school.
//
// @Summary      Grade details
// @Tags         principal
// @Produce      json
// @Security     BearerAuth
// @Param        exam_id       query  string  false  "Exam filter"
// @Param        class_name    query  string  false  "Class filter"
// @Param        subject_code  query  string  false  "Subject filter"
// @Success      200  {array}  ports.GradeDetailEntry
// @Router       /principal/grades [get]
func (h *PrincipalHandler) Details(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	entries, err := h.statsService.GradeDetails(c.Request().Context(), actor, detailFilters(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Export streams the filtered grade details as CSV, published state included.
//
// @Summary      Export grade details as CSV
// @Tags         principal
// @Produce      text/csv
// @Security     BearerAuth
// @Param        exam_id       query  string  false  "Exam filter"
// @Param        class_name    query  string  false  "Class filter"
// @Param        subject_code  query  string  false  "Subject filter"
// @Success      200  {string}  string
// @Router       /principal/grades/export [get]
func (h *PrincipalHandler) Export(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	rows, err := h.statsService.ExportRows(c.Request().Context(), actor, detailFilters(c))
	if err != nil {
		return err
	}
	metrics.ExportsTotal.WithLabelValues("principal").Inc()
	return writeExportCSV(c, "grade_details.csv", rows, true)
}
