package resumeparse

import "fmt"

// MalformedResponseError represents a resume parser response that is not
// valid JSON, or is valid JSON but neither an object nor an array whose
// first element is an object.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed resume parser response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed resume parser response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
