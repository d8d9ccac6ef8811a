package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"scriptqueue/internal/logging"
	"scriptqueue/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the error taxonomy onto HTTP statuses and logs server-side
// failures. Client errors keep their message; 5xx responses get a generic one
// so internals never leak.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := services.HTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		if logger != nil {
			logger.Error("request failed", logging.Error(err))
		}
		message = "service unavailable"
	}
	writeJSON(w, status, errorBody{Error: message})
}
