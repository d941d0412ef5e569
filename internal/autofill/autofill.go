package autofill

import (
	"context"
	"io"

	"github.com/jonathan/ats-autofill/internal/resumeparse"
	"github.com/jonathan/ats-autofill/internal/types"
	"go.uber.org/zap"
)

// Parser sends a resume file to the parsing service and returns the raw
// response body.
type Parser interface {
	ParseResume(ctx context.Context, fileName string, file io.Reader) ([]byte, error)
}

// Result is the outcome of a successful upload and merge.
type Result struct {
	Form        types.CandidateForm
	Draft       *types.CandidateDraft
	RawResponse []byte
}

// Autofiller runs the upload, normalize and merge cycle. It holds no form
// state of its own and is safe for concurrent use.
type Autofiller struct {
	parser     Parser
	normalizer *resumeparse.Normalizer
	policy     ListPolicy
	logger     *zap.Logger
}

// New creates an Autofiller. A nil logger disables logging.
func New(parser Parser, normalizer *resumeparse.Normalizer, policy ListPolicy, logger *zap.Logger) *Autofiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = ListRetainOnEmpty
	}
	return &Autofiller{
		parser:     parser,
		normalizer: normalizer,
		policy:     policy,
		logger:     logger,
	}
}

// Policy returns the list merge policy in use.
func (a *Autofiller) Policy() ListPolicy {
	return a.policy
}

// Draft uploads the file and normalizes the response. Any failure is
// returned as *FailedError.
func (a *Autofiller) Draft(ctx context.Context, fileName string, file io.Reader) (*types.CandidateDraft, []byte, error) {
	body, err := a.parser.ParseResume(ctx, fileName, file)
	if err != nil {
		a.logger.Warn("resume parser call failed", zap.String("file", fileName), zap.Error(err))
		return nil, nil, &FailedError{FileName: fileName, Cause: err}
	}

	draft, err := a.normalizer.NormalizeResponse(body)
	if err != nil {
		a.logger.Warn("resume parser response rejected", zap.String("file", fileName), zap.Error(err))
		return nil, nil, &FailedError{FileName: fileName, Cause: err}
	}

	return draft, body, nil
}

// Apply merges draft into current and records the uploaded file name.
func (a *Autofiller) Apply(current types.CandidateForm, draft *types.CandidateDraft, fileName string) types.CandidateForm {
	next := Merge(current, draft, a.policy)
	if fileName != "" {
		next.ResumeFileName = fileName
	}
	return next
}

// Merged applies draft to current and validates the result. An invalid
// result is returned as *InvalidFormError and must not be stored.
func (a *Autofiller) Merged(current types.CandidateForm, draft *types.CandidateDraft, fileName string) (types.CandidateForm, error) {
	next := a.Apply(current, draft, fileName)
	if err := next.Validate(); err != nil {
		a.logger.Warn("merged candidate form is invalid", zap.String("file", fileName), zap.Error(err))
		return current, &InvalidFormError{FileName: fileName, Cause: err}
	}

	a.logger.Info("resume autofill applied",
		zap.String("file", fileName),
		zap.Strings("fields", draft.PresentFields()),
		zap.String("policy", string(a.policy)),
	)
	return next, nil
}
