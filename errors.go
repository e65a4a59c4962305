package blobgate

import (
	"encoding/json"
	"net/http"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

// writeError sends the uniform JSON error envelope.
// All errors terminate here, at the orchestrator boundary; nothing is
// retried and no error path writes to the cache.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: msg})
}

// Client-visible error messages. Authorization failures share one
// message on the wire; the distinguishing reason is only logged.
const (
	msgAccessDenied       = "access denied"
	msgAuthRequired       = "authentication required"
	msgInvalidCredentials = "invalid credentials"
	msgNotFound           = "not found"
	msgAuthUnavailable    = "authentication unavailable"
	msgStorageUnavailable = "storage unavailable"
)
