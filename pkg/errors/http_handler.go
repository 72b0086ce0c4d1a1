package errors

import (
	"encoding/json"
	"net/http"
)

const DefaultInternalMessage = "Internal server error"

// ErrorResponse is the envelope the booking form expects for every failure.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code,omitempty"`
	Error   string         `json:"error,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func NewErrorResponse(appErr *AppError) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if len(appErr.Reasons) > 0 {
		resp.Errors = appErr.Reasons
	} else {
		resp.Error = appErr.Message
	}
	return resp
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err, DefaultInternalMessage)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.StatusCode())
	return json.NewEncoder(w).Encode(NewErrorResponse(appErr))
}
