package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/housing-service/internal/constants"
	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.IsPhoneNumber(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register phone validator: %v", err))
	}
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure the response has already been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return false
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", formatValidationErrors(validationErrors), err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request data", nil, err)
		}
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	out := make([]dtos.ValidationErrorDetail, 0, len(errs))
	for _, fe := range errs {
		msg := "invalid value"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "phone":
			msg = "must be a 10 digit or E.164 phone number"
		case "alpha":
			msg = "must contain letters only"
		case "alphanum":
			msg = "must contain letters and digits only"
		case "numeric":
			msg = "must contain digits only"
		case "len":
			msg = "must be exactly " + fe.Param() + " characters"
		case "min":
			msg = "must be at least " + fe.Param() + " characters"
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		case "gt":
			msg = "must be greater than " + fe.Param()
		}
		out = append(out, dtos.ValidationErrorDetail{
			Field:   fe.Field(),
			Message: msg,
			Code:    fe.Tag(),
		})
	}
	return out
}

// domainErrors maps service and model sentinels to their HTTP shape.
var domainErrors = []struct {
	err    error
	status int
	code   string
	msg    string
}{
	{models.ErrAlreadyOccupied, http.StatusConflict, utils.ErrCodeAlreadyOccupied, "Flat is already occupied"},
	{models.ErrDuplicateBlock, http.StatusConflict, utils.ErrCodeDuplicateBlock, "Block already exists"},
	{models.ErrDuplicateFlat, http.StatusConflict, utils.ErrCodeDuplicateFlat, "Flat already exists in block"},
	{models.ErrCommunityAlreadyEstablished, http.StatusConflict, utils.ErrCodeConflict, "Community already established"},
	{utils.ErrEmailExists, http.StatusConflict, utils.ErrCodeConflict, "Email already registered"},
	{utils.ErrRowVersionConflict, http.StatusConflict, utils.ErrCodeRowVersionConflict, "Record was modified concurrently, please retry"},
	{models.ErrUnknownBlock, http.StatusNotFound, utils.ErrCodeUnknownBlock, "Block does not exist"},
	{models.ErrFlatNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Flat not found"},
	{models.ErrOccupantNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Occupant not found"},
	{models.ErrFlatNotOccupied, http.StatusConflict, utils.ErrCodeConflict, "Flat is not occupied"},
	{models.ErrPendingDues, http.StatusUnprocessableEntity, utils.ErrCodePendingDues, "Pending dues must be cleared first"},
	{models.ErrNoPendingDues, http.StatusUnprocessableEntity, utils.ErrCodeNoPendingDues, "Nothing to pay"},
	{models.ErrNoPaymentStrategy, http.StatusUnprocessableEntity, utils.ErrCodeNoPaymentStrategy, "Flat category cannot be billed"},
	{utils.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Invalid credentials"},
	{models.ErrCommunityNotEstablished, http.StatusServiceUnavailable, utils.ErrCodeCommunityNotEstablished, "Housing community is not established"},
}

// respondServiceError writes the mapped response for a known sentinel, or a
// 500 carrying fallback as the public message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			utils.HandleAppError(w, &utils.AppError{
				StatusCode: de.status,
				Code:       de.code,
				Message:    de.msg,
				Err:        err,
			})
			return
		}
	}
	utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, fallback, nil, err)
}
