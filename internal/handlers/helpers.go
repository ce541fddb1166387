package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/emran-niftyitsolution/streaming/internal/models"
)

// sendError writes a JSON error response with the given message, machine
// code, and HTTP status.
func sendError(w http.ResponseWriter, message, code string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResp := models.ErrorResponse{
		Error: message,
		Code:  code,
	}
	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// sendJSON writes a JSON response with the given status.
func sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
