// Package respond provides shared JSON response utilities for API handlers.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
)

// ErrorBody is the standard error shape for all API errors.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Kind    string   `json:"kind,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

// ErrorResponse wraps ErrorBody. Quota carries the quota snapshot on a 429.
type ErrorResponse struct {
	Error ErrorBody   `json:"error"`
	Quota interface{} `json:"quota,omitempty"`
}

// WriteError sends a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSONObject(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// WriteAppError sends err with the status, kind and hints its tag implies.
// quota is included when non-nil.
func WriteAppError(w http.ResponseWriter, err error, quota interface{}) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", string(kind)).Msg("Request failed")
	}

	WriteJSONObject(w, status, ErrorResponse{
		Error: ErrorBody{
			Code:    Code(kind),
			Message: err.Error(),
			Kind:    string(kind),
			Hints:   apperr.Hints(err),
		},
		Quota: quota,
	})
}

// Code turns a kind into an error code, e.g. QUOTA_EXCEEDED
func Code(kind apperr.Kind) string {
	if kind == apperr.KindUnknown {
		return "INTERNAL_ERROR"
	}
	return strings.ToUpper(string(kind))
}

// WriteJSONObject marshals a Go value to JSON and writes it.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
