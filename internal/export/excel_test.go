package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func sampleRows() []DraftRow {
	jane := types.NewCandidateDraft()
	jane.FirstName = strPtr("Jane")
	jane.Email = strPtr("jane@example.com")
	jane.Skills = []string{"Go", "SQL"}
	jane.Education = []types.EducationEntry{
		{Institution: "MIT", Degree: "BSc", EndDate: "2018-07-01"},
		{Institution: "Stanford", Degree: "MSc", EndDate: "2020-07-01"},
	}
	jane.Experience = []types.ExperienceEntry{{Company: "Acme", Title: "Engineer", StartDate: "2019", EndDate: "Present"}}

	bob := types.NewCandidateDraft()
	bob.LastName = strPtr("Smith")

	return []DraftRow{
		{Source: "jane.json", Draft: jane},
		{Source: "bob.json", Draft: bob},
		{Source: "skipped.json", Draft: nil},
	}
}

func TestExportDrafts_EnsuresXlsxExtension(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "drafts")

	path, err := ExportDrafts(sampleRows(), outputPath)
	require.NoError(t, err)

	assert.Equal(t, outputPath+".xlsx", path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExportDrafts_KeepsExistingExtension(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "drafts.XLSX")

	path, err := ExportDrafts(nil, outputPath)
	require.NoError(t, err)
	assert.Equal(t, outputPath, path)
}

func TestExportDrafts_Contents(t *testing.T) {
	path, err := ExportDrafts(sampleRows(), filepath.Join(t.TempDir(), "drafts.xlsx"))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{CandidatesSheet, EducationSheet, ExperienceSheet}, f.GetSheetList())

	candidates, err := f.GetRows(CandidatesSheet)
	require.NoError(t, err)
	require.Len(t, candidates, 3, "header plus two drafts")
	assert.Equal(t, "Source", candidates[0][0])
	assert.Equal(t, "jane.json", candidates[1][0])
	assert.Equal(t, "Jane", candidates[1][1])
	assert.Equal(t, "jane@example.com", candidates[1][3])
	assert.Equal(t, "Go, SQL", candidates[1][11])
	assert.Equal(t, "Smith", candidates[2][2])

	education, err := f.GetRows(EducationSheet)
	require.NoError(t, err)
	require.Len(t, education, 3)
	assert.Equal(t, []string{"jane.json", "Stanford", "MSc", "", "2020-07-01"}, education[2])

	experience, err := f.GetRows(ExperienceSheet)
	require.NoError(t, err)
	require.Len(t, experience, 2)
	assert.Equal(t, "Engineer", experience[1][2])
}

func TestExportDrafts_BadDirectory(t *testing.T) {
	_, err := ExportDrafts(sampleRows(), filepath.Join(t.TempDir(), "missing", "drafts.xlsx"))
	assert.Error(t, err)
}
