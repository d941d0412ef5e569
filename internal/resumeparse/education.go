package resumeparse

import (
	"fmt"
	"regexp"

	"github.com/jonathan/ats-autofill/internal/types"
)

// DefaultEducationSlots is the number of "Education N" objects the parser
// emits at most.
const DefaultEducationSlots = 10

// graduationMonthDay is appended to an extracted year. The parser reports
// only a year, so every graduation lands mid-year.
const graduationMonthDay = "-07-01"

// yearPattern matches a run of exactly four digits.
var yearPattern = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)

// EducationKey returns the container key of the education object at index.
func EducationKey(index int) string {
	return fmt.Sprintf("Education %d", index)
}

// GraduationEndDate turns free-text graduation info ("July 2023", "2023")
// into an ISO end date. It returns "" when no four-digit year is present.
func GraduationEndDate(raw string) string {
	match := yearPattern.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	return match[1] + graduationMonthDay
}

// ExtractEducation reads "Education 0" through "Education slots-1" in index
// order, skipping missing or empty objects.
func ExtractEducation(raw map[string]any, slots int) []types.EducationEntry {
	entries := []types.EducationEntry{}
	for i := 0; i < slots; i++ {
		sub := object(raw, EducationKey(i))
		if sub == nil {
			continue
		}
		entries = append(entries, educationEntry(sub))
	}
	return entries
}

func educationEntry(sub map[string]any) types.EducationEntry {
	var entry types.EducationEntry
	entry.Institution, _ = Resolve(sub, FieldInstitution)
	entry.Degree, _ = Resolve(sub, FieldDegree)
	entry.Field, _ = Resolve(sub, FieldFieldOfStudy)
	if year, ok := Resolve(sub, FieldGraduationYear); ok {
		entry.EndDate = GraduationEndDate(year)
	}
	return entry
}
