// Package autofill merges normalized resume drafts into candidate forms.
package autofill

import (
	"fmt"

	"github.com/jonathan/ats-autofill/internal/types"
)

// ListPolicy decides what an empty parsed list does to the form's list.
type ListPolicy string

const (
	// ListRetainOnEmpty keeps the form's list when the parsed list is empty.
	ListRetainOnEmpty ListPolicy = "retain-on-empty"
	// ListReplace always replaces the form's list, even with an empty one.
	ListReplace ListPolicy = "replace"
)

// ParseListPolicy validates a policy name. An empty name selects
// ListRetainOnEmpty.
func ParseListPolicy(s string) (ListPolicy, error) {
	switch ListPolicy(s) {
	case "", ListRetainOnEmpty:
		return ListRetainOnEmpty, nil
	case ListReplace:
		return ListReplace, nil
	default:
		return "", fmt.Errorf("unknown list merge policy %q (valid: %s, %s)", s, ListRetainOnEmpty, ListReplace)
	}
}

// Merge applies draft to form and returns the new form. The input form is
// not modified. Present scalars overwrite; absent scalars keep the form
// value. Lists follow policy.
func Merge(form types.CandidateForm, draft *types.CandidateDraft, policy ListPolicy) types.CandidateForm {
	next := form.Clone()
	if draft == nil {
		return next
	}
	next = applyIdentity(next, draft)
	next = applySkills(next, draft.Skills, policy)
	next = applyEducation(next, draft.Education, policy)
	next = applyExperience(next, draft.Experience, policy)
	return next
}

func applyIdentity(form types.CandidateForm, draft *types.CandidateDraft) types.CandidateForm {
	overwrite(&form.FirstName, draft.FirstName)
	overwrite(&form.LastName, draft.LastName)
	overwrite(&form.Email, draft.Email)
	overwrite(&form.Phone, draft.Phone)
	overwrite(&form.City, draft.City)
	overwrite(&form.State, draft.State)
	overwrite(&form.LinkedinURL, draft.LinkedinURL)
	overwrite(&form.CurrentCompany, draft.CurrentCompany)
	overwrite(&form.CurrentTitle, draft.CurrentTitle)
	overwrite(&form.ExperienceYears, draft.ExperienceYears)
	overwrite(&form.Summary, draft.Summary)
	return form
}

func applySkills(form types.CandidateForm, skills []string, policy ListPolicy) types.CandidateForm {
	if replaces(len(skills), policy) {
		form.Skills = append([]string{}, skills...)
	}
	return form
}

func applyEducation(form types.CandidateForm, entries []types.EducationEntry, policy ListPolicy) types.CandidateForm {
	if replaces(len(entries), policy) {
		form.Education = append([]types.EducationEntry{}, entries...)
	}
	return form
}

func applyExperience(form types.CandidateForm, entries []types.ExperienceEntry, policy ListPolicy) types.CandidateForm {
	if replaces(len(entries), policy) {
		form.Experience = append([]types.ExperienceEntry{}, entries...)
	}
	return form
}

func overwrite(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func replaces(n int, policy ListPolicy) bool {
	return n > 0 || policy == ListReplace
}
