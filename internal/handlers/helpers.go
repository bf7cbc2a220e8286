package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/companionhq/companion/internal/services/chat"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeErrorDetails includes the upstream failure text alongside the error.
func writeErrorDetails(w http.ResponseWriter, message, details string, status int) {
	writeJSON(w, status, map[string]string{"error": message, "details": details})
}

// statusForChatError maps typed chat pipeline errors onto HTTP statuses.
func statusForChatError(err error) int {
	var chatErr *chat.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chat.ErrTypeValidation:
			return http.StatusBadRequest
		case chat.ErrTypeNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}
