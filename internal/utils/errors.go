package utils

import (
	"errors"
	"net/http"
)

// Errors shared across layers. Domain rule violations live in the models
// package; these cover persistence, identity and outbound failures.
var (
	ErrEmailExists        = errors.New("email_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (SendGrid, Twilio)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError carries an HTTP status and public code from a service to a controller.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError responds with the AppError's status and code, or a 500 for
// anything else.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
