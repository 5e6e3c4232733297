package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"uikb/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(errors.InternalError),
	}

	var uErr *errors.UIKBError
	if stderrors.As(err, &uErr) {
		resp.Error = uErr.Message
		resp.Code = string(uErr.Code)
		resp.Details = uErr.Details
		resp.SuggestedFixes = uErr.SuggestedFixes
	}

	WriteJSON(w, resp, status)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, errors.NewInternalError(message, err), http.StatusInternalServerError)
}
