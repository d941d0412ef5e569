// Package resumeparse normalizes resume parser webhook responses into
// candidate drafts.
package resumeparse

import (
	"fmt"

	"github.com/jonathan/ats-autofill/internal/types"
	"go.uber.org/zap"
)

// Options bounds how much of a parser response is read.
type Options struct {
	EducationSlots  int // "Education N" objects to read, 1 or more
	ExperienceSlots int // experience slot tables to apply, 1..len(ExperienceSlots)
}

// DefaultOptions returns the parser's documented limits.
func DefaultOptions() Options {
	return Options{
		EducationSlots:  DefaultEducationSlots,
		ExperienceSlots: len(ExperienceSlots),
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.EducationSlots < 1 {
		return fmt.Errorf("education slots must be at least 1, got %d", o.EducationSlots)
	}
	if o.ExperienceSlots < 1 || o.ExperienceSlots > len(ExperienceSlots) {
		return fmt.Errorf("experience slots must be between 1 and %d, got %d", len(ExperienceSlots), o.ExperienceSlots)
	}
	return nil
}

// Normalizer converts raw parser output into CandidateDraft values. It keeps
// no state between calls.
type Normalizer struct {
	opts   Options
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger disables logging.
func NewNormalizer(opts Options, logger *zap.Logger) (*Normalizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{opts: opts, logger: logger}, nil
}

// NormalizeResponse decodes and normalizes a raw response body.
func (n *Normalizer) NormalizeResponse(body []byte) (*types.CandidateDraft, error) {
	raw, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return n.Normalize(raw), nil
}

// Normalize builds a draft from an unwrapped response mapping. Missing or
// empty values leave the draft field unset.
func (n *Normalizer) Normalize(raw map[string]any) *types.CandidateDraft {
	draft := types.NewCandidateDraft()

	draft.FirstName = n.scalar(raw, FieldFirstName)
	draft.LastName = n.scalar(raw, FieldLastName)
	draft.Email = n.scalar(raw, FieldEmail)
	draft.Phone = n.scalar(raw, FieldPhone)
	draft.City = n.scalar(raw, FieldCity)
	draft.State = n.scalar(raw, FieldState)
	draft.LinkedinURL = n.scalar(raw, FieldLinkedinURL)
	draft.CurrentCompany = n.scalar(raw, FieldCurrentCompany)
	draft.CurrentTitle = n.scalar(raw, FieldCurrentTitle)
	draft.ExperienceYears = n.scalar(raw, FieldExperienceYears)
	draft.Summary = n.scalar(raw, FieldSummary)

	if list, ok := Resolve(raw, FieldSkills); ok {
		draft.Skills = ParseSkills(list)
	}
	draft.Education = ExtractEducation(raw, n.opts.EducationSlots)
	draft.Experience = ExtractExperience(raw, ExperienceSlots[:n.opts.ExperienceSlots])

	n.logger.Debug("normalized resume response",
		zap.Strings("fields", draft.PresentFields()),
		zap.Int("skills", len(draft.Skills)),
		zap.Int("education", len(draft.Education)),
		zap.Int("experience", len(draft.Experience)),
	)

	return draft
}

func (n *Normalizer) scalar(raw map[string]any, field Field) *string {
	v, ok := Resolve(raw, field)
	if !ok {
		return nil
	}
	return &v
}
