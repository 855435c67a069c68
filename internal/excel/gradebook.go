package excel

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/aulas/aulas-bff/internal/models"
)

const (
	SheetName   = "Submissions"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"ID", "Student", "File", "Submitted", "Grade"}

// FileName is the download name for an assignment's gradebook.
func FileName(assignmentID string) string {
	return fmt.Sprintf("assignment-%s-grades.xlsx", assignmentID)
}

// BuildGradebook lays out one row per submission. Ungraded rows leave the
// Grade cell empty.
func BuildGradebook(subs []models.Submission) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with "Sheet1"; rename it instead of adding a second sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to name sheet")
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to write header")
	}

	for i, s := range subs {
		row := []any{s.ID, s.StudentName, s.SubmissionFile, s.SubmissionDate, nil}
		if s.Grade != nil {
			row[4] = *s.Grade
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to write row %d", i+2)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to freeze header")
	}
	return f, nil
}

// WriteGradebook streams the workbook to w.
func WriteGradebook(w io.Writer, subs []models.Submission) error {
	f, err := BuildGradebook(subs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}
