package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/resumeparse"
	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/jonathan/ats-autofill/internal/webhook"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		transportErr   *webhook.TransportError
		malformedErr   *resumeparse.MalformedResponseError
		validationErr  *ErrValidation
		validationErrs validator.ValidationErrors
		invalidFormErr *autofill.InvalidFormError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, autofill.ErrParseInProgress):
		return http.StatusConflict
	case errors.Is(err, types.ErrCandidateNotFound):
		return http.StatusNotFound
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &malformedErr), errors.As(err, &invalidFormErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
