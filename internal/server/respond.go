package server

import (
	"encoding/json"
	"net/http"

	"cropcast/internal/logging"
)

// API error codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnknownCrop    = "unknown_crop"
	CodeUnknownVariety = "unknown_variety"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
)

// APIError is the JSON error envelope: {"error": {...}}.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Get(logging.CategoryAPI).Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, errorEnvelope{Error: APIError{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
