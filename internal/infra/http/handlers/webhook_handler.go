package handlers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/usecase"
)

// WebhookHandler receives Stripe events. It must see the raw request
// body: any middleware that re-encodes JSON would break the signature.
type WebhookHandler struct {
	Verifier usecase.WebhookVerifier
	Activate *usecase.ActivateMembershipUseCase
	Logger   zerolog.Logger
}

func NewWebhookHandler(verifier usecase.WebhookVerifier, activate *usecase.ActivateMembershipUseCase, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		Verifier: verifier,
		Activate: activate,
		Logger:   logger.With().Str("handler", "Webhook").Logger(),
	}
}

const maxWebhookBody = 1 << 20 // Stripe caps event payloads well under 1 MiB

func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unreadable body"})
		return
	}

	event, err := h.Verifier.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn().Err(err).Msg("webhook signature rejected")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signature"})
		return
	}

	if err := h.Activate.Execute(r.Context(), event); err != nil {
		// 500 makes Stripe redeliver. A failed attempt releases its
		// event claim so the retry is processed; completed deliveries
		// stay deduplicated.
		h.Logger.Error().Err(err).Str("event_id", event.ID).Str("event_type", event.Type).Msg("webhook processing failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
