package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cvparse/resume-extractor/internal/common"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondRaw writes pre-serialized JSON untouched, preserving field order.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, common.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
