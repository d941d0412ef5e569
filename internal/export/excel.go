// Package export writes normalized resume drafts to Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	CandidatesSheet = "Candidates"
	EducationSheet  = "Education"
	ExperienceSheet = "Experience"
)

// DraftRow is one normalized resume and the file it came from.
type DraftRow struct {
	Source string                `json:"source"`
	Draft  *types.CandidateDraft `json:"draft"`
}

var candidateHeaders = []string{
	"Source", "First Name", "Last Name", "Email", "Phone", "City", "State",
	"LinkedIn URL", "Current Company", "Current Title", "Years of Experience",
	"Skills", "Summary",
}

var educationHeaders = []string{"Source", "Institution", "Degree", "Field of Study", "Graduation Date"}

var experienceHeaders = []string{"Source", "Company", "Title", "Location", "Start Date", "End Date", "Description"}

// ExportDrafts writes drafts to an .xlsx workbook with one sheet per
// section. The extension is added when missing; the final path is returned.
func ExportDrafts(rows []DraftRow, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CandidatesSheet); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{EducationSheet, ExperienceSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	var candidates, education, experience [][]any
	for _, row := range rows {
		d := row.Draft
		if d == nil {
			continue
		}
		candidates = append(candidates, []any{
			row.Source, deref(d.FirstName), deref(d.LastName), deref(d.Email), deref(d.Phone),
			deref(d.City), deref(d.State), deref(d.LinkedinURL), deref(d.CurrentCompany),
			deref(d.CurrentTitle), deref(d.ExperienceYears), strings.Join(d.Skills, ", "), deref(d.Summary),
		})
		for _, e := range d.Education {
			education = append(education, []any{row.Source, e.Institution, e.Degree, e.Field, e.EndDate})
		}
		for _, e := range d.Experience {
			experience = append(experience, []any{row.Source, e.Company, e.Title, e.Location, e.StartDate, e.EndDate, e.Description})
		}
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{CandidatesSheet, candidateHeaders, candidates},
		{EducationSheet, educationHeaders, education},
		{ExperienceSheet, experienceHeaders, experience},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return "", fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
