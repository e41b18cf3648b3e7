package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/apperrors"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(failureEnvelope{Success: false, Message: message})
}

// respondError maps the app error taxonomy onto HTTP statuses. Unknown
// errors get a safe generic message; the detail goes to the log only.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		respondMessage(w, http.StatusBadRequest, err.Error())
	case apperrors.IsNotFound(err):
		respondMessage(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
