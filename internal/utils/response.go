package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload          = "invalid_payload"
	ErrCodeValidation              = "validation_error"
	ErrCodeUnauthorized            = "unauthorized"
	ErrCodeForbidden               = "forbidden"
	ErrCodeTokenExpired            = "token_expired"
	ErrCodeInvalidCredentials      = "invalid_credentials"
	ErrCodeInternal                = "internal_server_error"
	ErrCodeNotFound                = "not_found"
	ErrCodeConflict                = "conflict"
	ErrCodeRowVersionConflict      = "row_version_conflict"
	ErrCodeExternalServiceFailure  = "external_service_failure"
	ErrCodeServiceUnavailable      = "service_unavailable"
	ErrCodeAlreadyOccupied         = "flat_already_occupied"
	ErrCodeDuplicateBlock          = "duplicate_block"
	ErrCodeDuplicateFlat           = "duplicate_flat"
	ErrCodeUnknownBlock            = "unknown_block"
	ErrCodePendingDues             = "pending_dues"
	ErrCodeNoPendingDues           = "no_pending_dues"
	ErrCodeNoPaymentStrategy       = "no_payment_strategy"
	ErrCodeCommunityNotEstablished = "community_not_established"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode builds a JSON error response with a standard
// code and message. The optional `details` is included if non-nil.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errBody := ErrorResponse{
		Code:    errorCode,
		Message: publicMessage,
	}
	if details != nil {
		errBody.Details = details
	}
	_ = json.NewEncoder(w).Encode(errBody)

	fields := logrus.Fields{"status": status, "code": errorCode}
	if len(devErrs) > 0 && devErrs[0] != nil {
		fields["error"] = devErrs[0].Error()
	}
	if status >= http.StatusInternalServerError {
		Logger.WithFields(fields).Error(publicMessage)
	} else {
		Logger.WithFields(fields).Warn(publicMessage)
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
