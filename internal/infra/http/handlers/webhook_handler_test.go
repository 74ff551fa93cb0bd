package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/usecase"
)

const testWebhookSecret = "whsec_handler_test"

func newTestWebhookHandler() *WebhookHandler {
	verifier := stripe.NewClient("sk_test", testWebhookSecret)
	// No repositories wired: these tests only exercise paths that stop
	// before any state is touched.
	activate := usecase.NewActivateMembershipUseCase(nil, nil, nil, nil, nil, zerolog.Nop())
	return NewWebhookHandler(verifier, activate, zerolog.Nop())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newTestWebhookHandler()
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, "whsec_wrong", time.Now()))
	rec := httptest.NewRecorder()

	h.HandleStripe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h := newTestWebhookHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.HandleStripe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAcksIgnoredEventTypes(t *testing.T) {
	h := newTestWebhookHandler()
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.deleted","data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripe.SignPayload(payload, testWebhookSecret, time.Now()))
	rec := httptest.NewRecorder()

	h.HandleStripe(rec, req)

	// Verified but irrelevant events are acked so Stripe stops resending.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
}
