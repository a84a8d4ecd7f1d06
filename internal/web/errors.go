package web

// errors.go provides unified response helpers for the web layer.
// Technical errors are logged server-side with the request ID; clients
// receive a JSON body with a single error message.

import (
	"encoding/json"
	"net/http"

	"github.com/supplychain-graph/server/internal/logging"
)

// errorResponse is the JSON structure for API error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError logs the error with request context and writes the JSON body.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON writes status and v as a JSON body. The Content-Type header
// is set before WriteHeader so it reaches the wire.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
