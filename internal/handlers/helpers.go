package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends an error JSON response of the form {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	// Cap message length to avoid leaking long internal error chains
	if len(message) > 200 {
		message = message[:200] + "..."
	}

	respondJSON(w, status, map[string]string{"error": message})
}
