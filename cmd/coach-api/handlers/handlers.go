// Package handlers provides HTTP handlers for the coach API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/liftlab/coach-engine/internal/observability"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *observability.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *observability.Logger, status int, message, detail string) {
	writeJSON(w, logger, status, errorResponse{Error: message, Detail: detail})
}
