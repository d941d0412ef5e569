package resumeparse

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field names a semantic value the resume parser may report.
type Field string

// Top-level candidate fields
const (
	FieldFirstName       Field = "first_name"
	FieldLastName        Field = "last_name"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldCity            Field = "city"
	FieldState           Field = "state"
	FieldLinkedinURL     Field = "linkedin_url"
	FieldCurrentCompany  Field = "current_company"
	FieldCurrentTitle    Field = "current_title"
	FieldExperienceYears Field = "experience_years"
	FieldSummary         Field = "summary"
	FieldSkills          Field = "skills"
)

// Fields read from inside an "Education N" object
const (
	FieldInstitution    Field = "institution"
	FieldDegree         Field = "degree"
	FieldFieldOfStudy   Field = "field_of_study"
	FieldGraduationYear Field = "graduation_year"
)

// KeyAliases lists, per field, the literal keys the resume parser has been
// seen to use, in lookup order. The upstream labels drift by trailing spaces
// and casing; a rename upstream is a one-line change here.
var KeyAliases = map[Field][]string{
	FieldFirstName:       {"First name", "First name ", "First Name"},
	FieldLastName:        {"Last Name", "Last Name ", "Last name"},
	FieldEmail:           {"Email", "Email ", "Email address"},
	FieldPhone:           {"Phone", "Phone ", "Phone number"},
	FieldCity:            {"City", "City "},
	FieldState:           {"State", "State "},
	FieldLinkedinURL:     {"Linkedin URL", "Linkedin URL ", "LinkedIn URL"},
	FieldCurrentCompany:  {"Current Company", "Current Company "},
	FieldCurrentTitle:    {"Current Job Title", "Current Job Title ", "Current Title"},
	FieldExperienceYears: {"Years of Experience", "Years of Experience ", "Total Experience"},
	FieldSummary:         {"Summary", "Summary ", "Professional Summary"},
	FieldSkills:          {"Skills of the candidate ", "Skills of the candidate"},

	FieldInstitution:    {"Graduation Institution ", "Graduation Institution"},
	FieldDegree:         {"Graduation Degree of the candidate", "Graduation Degree of the candidate "},
	FieldFieldOfStudy:   {"Field of Study", "Field of Study "},
	FieldGraduationYear: {"Graduation Year", "Graduation Year "},
}

// Resolve returns the value for field from m using the first alias key
// present. A present key whose value is empty or not a scalar reports
// absent; later aliases are not consulted in that case.
func Resolve(m map[string]any, field Field) (string, bool) {
	for _, key := range KeyAliases[field] {
		raw, ok := m[key]
		if !ok {
			continue
		}
		return scalarString(raw)
	}
	return "", false
}

// lookup reads a literal key with the same value rules as Resolve.
func lookup(m map[string]any, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := scalarString(raw)
	return s
}

// scalarString converts a decoded JSON scalar to trimmed NFC text.
// Objects, arrays, booleans and null count as absent.
func scalarString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	default:
		return "", false
	}
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return "", false
	}
	return s, true
}

// object returns the nested object stored at key, or nil when the key is
// absent, not an object, or an object with no keys.
func object(m map[string]any, key string) map[string]any {
	sub, ok := m[key].(map[string]any)
	if !ok || len(sub) == 0 {
		return nil
	}
	return sub
}
