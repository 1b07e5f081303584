package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cvparse/resume-extractor/internal/billing"
)

// handleBillingWebhook consumes billing-provider events. The request is
// authenticated by its signature header, never by session.
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Failed to read payload")
		return
	}

	if s.billing.WebhookSecret == "" {
		s.logger.Error("webhook secret not configured")
		respondErrorMessage(w, http.StatusBadRequest, "Missing webhook signature")
		return
	}
	sig := r.Header.Get(billing.SignatureHeader)
	if err := billing.VerifySignature(payload, sig, s.billing.WebhookSecret, billing.DefaultTolerance, time.Now()); err != nil {
		s.logger.Error("webhook signature verification failed", "error", err)
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var ev billing.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "Malformed event payload")
		return
	}

	if err := s.ledger.HandleEvent(r.Context(), ev); err != nil {
		s.logger.Error("webhook handler failed", "event_id", ev.ID, "type", ev.Type, "error", err)
		respondErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
