package autofill

import (
	"errors"
	"fmt"
)

// ErrParseInProgress is returned when an upload is attempted while another
// one for the same form is still outstanding.
var ErrParseInProgress = errors.New("resume parsing already in progress")

// FailedError reports a resume autofill that was aborted. The form it was
// started against is left unchanged.
type FailedError struct {
	FileName string
	Cause    error
}

func (e *FailedError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("resume parsing failed for %s: %v", e.FileName, e.Cause)
	}
	return fmt.Sprintf("resume parsing failed: %v", e.Cause)
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}

// InvalidFormError reports a merge whose result fails form validation. The
// form is left unchanged.
type InvalidFormError struct {
	FileName string
	Cause    error
}

func (e *InvalidFormError) Error() string {
	return fmt.Sprintf("resume %s produced an invalid candidate form: %v", e.FileName, e.Cause)
}

func (e *InvalidFormError) Unwrap() error {
	return e.Cause
}
