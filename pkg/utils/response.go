package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stackvest/stackvest-backend/pkg/apperrors"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func BuildSuccessResponse(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Message: message, Data: data})
}

func BuildErrorResponse(w http.ResponseWriter, status int, message string, errs interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Message: message, Errors: errs})
}

// BuildAppErrorResponse maps the error taxonomy onto HTTP statuses. Validation
// detail goes back to the caller; anything unknown is a generic retry message.
func BuildAppErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		BuildErrorResponse(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		BuildErrorResponse(w, http.StatusBadRequest, "Insufficient balance", nil)
	case errors.Is(err, apperrors.ErrNotFound):
		BuildErrorResponse(w, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, apperrors.ErrConflict):
		BuildErrorResponse(w, http.StatusConflict, "The record changed, refetch and try again", nil)
	case errors.Is(err, apperrors.ErrForbidden):
		BuildErrorResponse(w, http.StatusForbidden, "Operation not permitted", nil)
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		BuildErrorResponse(w, http.StatusConflict, "Already exists", nil)
	default:
		BuildErrorResponse(w, http.StatusInternalServerError, "Something went wrong, try again", nil)
	}
}
