package handler

import (
	"errors"
	"net/http"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
)

const internalErrorMessage = "the server encountered a problem and could not process your request"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	// fall back to an empty 500 if the envelope cannot be encoded
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity status.
// The request was well-formed but its content violates the listed fields.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

// badRequestResponse returns 400 BadRequest status
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

// internalErrorResponse returns 500 InternalServerError status.
// Details stay in the logs.
func internalErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, internalErrorMessage)
}

// serviceErrorResponse maps a service error onto its status code.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		failedValidationResponse(w, verr.Fields)
		return
	}

	code := GetCode(err)
	if code == http.StatusInternalServerError {
		internalErrorResponse(w)
		return
	}
	errorResponse(w, code, err.Error())
}
