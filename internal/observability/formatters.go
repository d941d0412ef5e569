// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jonathan/ats-autofill/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintDraft outputs a human-readable summary of a normalized resume draft.
func (p *Printer) PrintDraft(source string, draft *types.CandidateDraft) {
	if draft == nil {
		return
	}

	var sb strings.Builder

	fields := []struct {
		label string
		value *string
	}{
		{"Name", joinName(draft.FirstName, draft.LastName)},
		{"Email", draft.Email},
		{"Phone", draft.Phone},
		{"Location", joinLocation(draft.City, draft.State)},
		{"LinkedIn", draft.LinkedinURL},
		{"Current", joinRole(draft.CurrentTitle, draft.CurrentCompany)},
		{"Experience", draft.ExperienceYears},
	}
	for _, f := range fields {
		if f.value != nil {
			sb.WriteString(fmt.Sprintf("%-11s %s\n", f.label+":", *f.value))
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("(no identity fields found)\n")
	}

	if len(draft.Skills) > 0 {
		shown := draft.Skills[:min(len(draft.Skills), maxItemsToShow)]
		sb.WriteString(fmt.Sprintf("\nSkills (%d): %s", len(draft.Skills), strings.Join(shown, ", ")))
		if len(draft.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" ... and %d more", len(draft.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(draft.Education) > 0 {
		sb.WriteString(fmt.Sprintf("\nEducation (%d):\n", len(draft.Education)))
		for _, e := range draft.Education {
			line := firstNonEmpty(e.Institution, e.Degree, e.Field, "(unnamed)")
			if e.Degree != "" && e.Degree != line {
				line += ", " + e.Degree
			}
			if len(e.EndDate) >= 4 {
				line += " (" + e.EndDate[:4] + ")"
			}
			sb.WriteString("  • " + line + "\n")
		}
	}

	if len(draft.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("\nExperience (%d):\n", len(draft.Experience)))
		for _, e := range draft.Experience {
			line := firstNonEmpty(e.Company, "(unnamed)")
			if e.Title != "" {
				line = e.Title + " at " + line
			}
			if e.StartDate != "" || e.EndDate != "" {
				line += fmt.Sprintf(" [%s - %s]", e.StartDate, e.EndDate)
			}
			sb.WriteString("  • " + line + "\n")
		}
	}

	title := "PARSED RESUME"
	if source != "" {
		title += ": " + source
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMergeSummary lists the form fields an autofill changed.
func (p *Printer) PrintMergeSummary(before, after types.CandidateForm) {
	changed := ChangedFields(before, after)
	if len(changed) == 0 {
		p.printBox("AUTOFILL", "No fields changed")
		return
	}
	p.printBox("AUTOFILL", fmt.Sprintf("Updated %d fields:\n  %s", len(changed), strings.Join(changed, "\n  ")))
}

// ChangedFields returns the JSON names of form fields that differ.
func ChangedFields(before, after types.CandidateForm) []string {
	var changed []string
	scalars := []struct {
		name string
		a, b string
	}{
		{"first_name", before.FirstName, after.FirstName},
		{"last_name", before.LastName, after.LastName},
		{"email", before.Email, after.Email},
		{"phone", before.Phone, after.Phone},
		{"city", before.City, after.City},
		{"state", before.State, after.State},
		{"linkedin_url", before.LinkedinURL, after.LinkedinURL},
		{"current_company", before.CurrentCompany, after.CurrentCompany},
		{"current_title", before.CurrentTitle, after.CurrentTitle},
		{"experience_years", before.ExperienceYears, after.ExperienceYears},
		{"summary", before.Summary, after.Summary},
		{"resume_file_name", before.ResumeFileName, after.ResumeFileName},
	}
	for _, s := range scalars {
		if s.a != s.b {
			changed = append(changed, s.name)
		}
	}
	if !slices.Equal(before.Skills, after.Skills) {
		changed = append(changed, "skills")
	}
	if !slices.Equal(before.Education, after.Education) {
		changed = append(changed, "education")
	}
	if !slices.Equal(before.Experience, after.Experience) {
		changed = append(changed, "experience")
	}
	return changed
}

func joinName(first, last *string) *string {
	return joinPresent(" ", first, last)
}

func joinLocation(city, state *string) *string {
	return joinPresent(", ", city, state)
}

func joinRole(title, company *string) *string {
	if title != nil && company != nil {
		s := *title + " at " + *company
		return &s
	}
	return joinPresent("", title, company)
}

func joinPresent(sep string, parts ...*string) *string {
	var vals []string
	for _, p := range parts {
		if p != nil {
			vals = append(vals, *p)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	s := strings.Join(vals, sep)
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
