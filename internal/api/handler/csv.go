package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/schoolworks/gradebook/internal/core/ports"
)

// readImportRows parses an import CSV into raw rows. The first line is the
// exam_id,subject_code,student_no,score header; field values stay text so
// the service owns all semantic validation. Line numbers are 1-based file
// lines for error reporting.
func readImportRows(r io.Reader) ([]ports.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short rows become row-level errors, not a failed batch
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]ports.ImportRow, 0, len(records)-1)
	for i, record := range records[1:] { // skip header
		row := ports.ImportRow{Line: i + 2}
		if len(record) > 0 {
			row.ExamID = record[0]
		}
		if len(record) > 1 {
			row.SubjectCode = record[1]
		}
		if len(record) > 2 {
			row.StudentNo = record[2]
		}
		if len(record) > 3 {
			row.Score = record[3]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeExportCSV streams export rows as a CSV attachment. The published
// column only appears on principal exports.
func writeExportCSV(c echo.Context, filename string, rows []ports.ExportRow, includePublished bool) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	header := []string{"exam", "subject", "student_no", "student_name", "class", "score"}
	if includePublished {
		header = append(header, "published")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ExamName,
			row.SubjectName,
			row.StudentNo,
			row.StudentName,
			row.ClassName,
			strconv.FormatFloat(row.Score, 'f', -1, 64),
		}
		if includePublished {
			record = append(record, strconv.FormatBool(row.Published))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
