package resumeparse

import "github.com/jonathan/ats-autofill/internal/types"

// ExperienceSlot is the literal key table for one positional experience
// object. Each slot in the parser output uses its own naming scheme, so the
// tables share nothing but shape.
type ExperienceSlot struct {
	Container   string
	Company     string
	Title       string
	City        string
	StartDate   string
	EndDate     string
	Description string
}

// ExperienceSlots holds the four slot tables in output order. "tittle" in
// the first slot is the parser's spelling and must match literally.
var ExperienceSlots = []ExperienceSlot{
	{
		Container:   "Company_0",
		Company:     "Company_0",
		Title:       "Company_0 Job tittle",
		City:        "Company_0 City",
		StartDate:   "Company_0 Start Date",
		EndDate:     "Company_0 End Date",
		Description: "Company_0 Job Description",
	},
	{
		Container:   "Second Company",
		Company:     "Second Company Name",
		Title:       "Second Company Job Title",
		City:        "Second Company City",
		StartDate:   "Second Company Start Date",
		EndDate:     "Second Company End Date",
		Description: "Second Company Job Description",
	},
	{
		Container:   "Third Company",
		Company:     "Third Company Name",
		Title:       "Third Company Job title",
		City:        "Third Company City",
		StartDate:   "Third Company Start date",
		EndDate:     "Third Company End date",
		Description: "Third Company Description",
	},
	{
		Container:   "Fourth Company",
		Company:     "Fourth Company name",
		Title:       "Fourth Company Job Title",
		City:        "Fourth Company Location",
		StartDate:   "Fourth Company Start Date",
		EndDate:     "Fourth Company End Date",
		Description: "Fourth Company Responsibilities",
	},
}

// Extract reads this slot's object from raw. It reports false when the
// object is missing or has no keys.
func (s ExperienceSlot) Extract(raw map[string]any) (types.ExperienceEntry, bool) {
	sub := object(raw, s.Container)
	if sub == nil {
		return types.ExperienceEntry{}, false
	}
	return types.ExperienceEntry{
		Company:     lookup(sub, s.Company),
		Title:       lookup(sub, s.Title),
		Location:    lookup(sub, s.City),
		StartDate:   lookup(sub, s.StartDate),
		EndDate:     lookup(sub, s.EndDate),
		Description: lookup(sub, s.Description),
	}, true
}

// ExtractExperience applies the given slot tables in order, skipping empty
// slots.
func ExtractExperience(raw map[string]any, slots []ExperienceSlot) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	for _, slot := range slots {
		if entry, ok := slot.Extract(raw); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
