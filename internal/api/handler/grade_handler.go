package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/api/metrics"
	"github.com/schoolworks/gradebook/internal/core/ports"
)

type GradeHandler struct {
	gradeService ports.GradeService
}

func NewGradeHandler(gradeService ports.GradeService) *GradeHandler {
	return &GradeHandler{gradeService: gradeService}
}

type upsertGradeRequest struct {
	ExamID      string  `json:"exam_id" validate:"required"`
	SubjectCode string  `json:"subject_code" validate:"required"`
	StudentNo   string  `json:"student_no" validate:"required"`
	Score       float64 `json:"score"`
}

type publishRequest struct {
	ExamID      string `json:"exam_id" validate:"required"`
	SubjectCode string `json:"subject_code" validate:"required"`
}

type publishResponse struct {
	Published int `json:"published"`
}

// ListOwn returns the authenticated student's published grades and clears
// the unread-notification flag.
//
// @Summary      List own grades
// @Tags         grades
// @Produce      json
// @Security     BearerAuth
// @Param        term     query  string  false  "Term filter"
// @Param        exam_id  query  string  false  "Exam filter"
// @Success      200  {object}  ports.StudentGradesResult
// @Router       /grades/me [get]
func (h *GradeHandler) ListOwn(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	result, err := h.gradeService.ListStudentGrades(c.Request().Context(), actor, c.QueryParam("term"), c.QueryParam("exam_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Upsert records or corrects one grade within the teacher's scope.
//
// @Summary      Record or update a grade
// @Tags         grades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      upsertGradeRequest  true  "Grade"
// @Success      200   {object}  domain.Grade
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /teacher/grades [put]
func (h *GradeHandler) Upsert(c echo.Context) error {
	var req upsertGradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	grade, err := h.gradeService.UpsertGrade(c.Request().Context(), actor, req.ExamID, req.SubjectCode, req.StudentNo, req.Score)
	if err != nil {
		metrics.GradeWritesTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.GradeWritesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, grade)
}

// Import accepts a CSV body and routes every row through the single grade
// mutation path, returning per-row errors alongside the processed count.
//
// @Summary      Bulk import grades from CSV
// @Tags         grades
// @Accept       plain
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ImportResult
// @Router       /teacher/grades/import [post]
func (h *GradeHandler) Import(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	rows, err := readImportRows(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.gradeService.BulkImport(c.Request().Context(), actor, rows)
	if err != nil {
		return err
	}
	metrics.ImportRowsTotal.WithLabelValues("processed").Add(float64(result.Processed))
	metrics.ImportRowsTotal.WithLabelValues("rejected").Add(float64(len(result.Errors)))
	return c.JSON(http.StatusOK, result)
}

// List returns the teacher's visible grades.
//
// @Summary      List grades in scope
// @Tags         grades
// @Produce      json
// @Security     BearerAuth
// @Param        exam_id     query  string  false  "Exam filter"
// @Param        class_name  query  string  false  "Class filter"
// @Param        sort_by     query  string  false  "student_no | score_asc | score_desc"
// @Success      200  {array}  ports.TeacherGradeView
// @Router       /teacher/grades [get]
func (h *GradeHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	views, err := h.gradeService.ListTeacherGrades(
		c.Request().Context(),
		actor,
		c.QueryParam("exam_id"),
		c.QueryParam("class_name"),
		c.QueryParam("sort_by"),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Publish makes all in-scope grades for an (exam, subject) visible to their
// students.
//
// @Summary      Publish grades
// @Tags         grades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      publishRequest  true  "Exam and subject"
// @Success      200   {object}  publishResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /teacher/grades/publish [post]
func (h *GradeHandler) Publish(c echo.Context) error {
	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	count, err := h.gradeService.Publish(c.Request().Context(), actor, req.ExamID, req.SubjectCode)
	if err != nil {
		return err
	}
	metrics.GradesPublishedTotal.Add(float64(count))
	return c.JSON(http.StatusOK, publishResponse{Published: count})
}

// Export streams the teacher's visible grades as CSV.
//
// @Summary      Export grades as CSV
// @Tags         grades
// @Produce      text/csv
// @Security     BearerAuth
// @Param        exam_id     query  string  false  "Exam filter"
// @Param        class_name  query  string  false  "Class filter"
// @Success      200  {string}  string
// @Router       /teacher/grades/export [get]
func (h *GradeHandler) Export(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	rows, err := h.gradeService.TeacherExportRows(c.Request().Context(), actor, c.QueryParam("exam_id"), c.QueryParam("class_name"))
	if err != nil {
		return err
	}
	metrics.ExportsTotal.WithLabelValues("teacher").Inc()
	return writeExportCSV(c, "grades.csv", rows, false)
}
