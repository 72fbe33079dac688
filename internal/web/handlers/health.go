package handlers

import (
	"net/http"
	"time"
)

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "facial-recognition-api",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
