// Package types provides type definitions for structured data used throughout the ATS autofill system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Candidate pipeline statuses
const (
	CandidateStatusNew          = "new"
	CandidateStatusScreening    = "screening"
	CandidateStatusInterviewing = "interviewing"
	CandidateStatusOffered      = "offered"
	CandidateStatusHired        = "hired"
	CandidateStatusRejected     = "rejected"
)

// ErrCandidateNotFound is returned by stores when updating a missing candidate.
var ErrCandidateNotFound = errors.New("candidate not found")

// EducationEntry is a single education record on a candidate.
type EducationEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"` // YYYY-MM-DD or empty
}

// ExperienceEntry is a single work experience record on a candidate.
// Dates are kept as the free text the resume parser produced.
type ExperienceEntry struct {
	Company     string `json:"company,omitempty"`
	Title       string `json:"title,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// CandidateDraft is the canonical, partially-filled result of normalizing a
// resume parser response. A nil scalar means the response did not carry the
// field; list fields are never nil.
type CandidateDraft struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	LinkedinURL     *string `json:"linkedin_url,omitempty"`
	CurrentCompany  *string `json:"current_company,omitempty"`
	CurrentTitle    *string `json:"current_title,omitempty"`
	ExperienceYears *string `json:"experience_years,omitempty"`
	Summary         *string `json:"summary,omitempty"`

	Skills     []string          `json:"skills"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
}

// NewCandidateDraft returns an empty draft with non-nil list fields.
func NewCandidateDraft() *CandidateDraft {
	return &CandidateDraft{
		Skills:     []string{},
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
	}
}

// PresentFields returns the JSON names of the scalar fields set on the draft.
func (d *CandidateDraft) PresentFields() []string {
	if d == nil {
		return nil
	}
	var fields []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"first_name", d.FirstName},
		{"last_name", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"city", d.City},
		{"state", d.State},
		{"linkedin_url", d.LinkedinURL},
		{"current_company", d.CurrentCompany},
		{"current_title", d.CurrentTitle},
		{"experience_years", d.ExperienceYears},
		{"summary", d.Summary},
	} {
		if f.value != nil {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// CandidateForm is the editable candidate form state.
type CandidateForm struct {
	FirstName       string `json:"first_name" validate:"required_without=Email"`
	LastName        string `json:"last_name"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string `json:"phone,omitempty"`
	City            string `json:"city,omitempty"`
	State           string `json:"state,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	CurrentCompany  string `json:"current_company,omitempty"`
	CurrentTitle    string `json:"current_title,omitempty"`
	ExperienceYears string `json:"experience_years,omitempty"`
	Summary         string `json:"summary,omitempty"`

	Skills     []string          `json:"skills"`
	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`

	// Never touched by resume autofill
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=new screening interviewing offered hired rejected"`
	Source         string `json:"source,omitempty"`
	Notes          string `json:"notes,omitempty"`
	ResumeFileName string `json:"resume_file_name,omitempty"`
}

// Validate validates the CandidateForm using the validator.
func (f *CandidateForm) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// Clone returns a deep copy of the form so list fields can be changed
// without aliasing the original.
func (f CandidateForm) Clone() CandidateForm {
	out := f
	if f.Skills != nil {
		out.Skills = append([]string(nil), f.Skills...)
	}
	if f.Education != nil {
		out.Education = append([]EducationEntry(nil), f.Education...)
	}
	if f.Experience != nil {
		out.Experience = append([]ExperienceEntry(nil), f.Experience...)
	}
	return out
}

// Candidate is a persisted candidate record.
type Candidate struct {
	ID uuid.UUID `json:"id"`
	CandidateForm
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResumeParseRecord is the audit trail of a successful resume autofill.
type ResumeParseRecord struct {
	ID          uuid.UUID       `json:"id"`
	CandidateID uuid.UUID       `json:"candidate_id"`
	FileName    string          `json:"file_name"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	Draft       *CandidateDraft `json:"draft,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
