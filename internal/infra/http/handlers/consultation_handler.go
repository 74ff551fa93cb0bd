package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/willpowerfitness/coach-api/internal/usecase"
)

type ConsultationHandler struct {
	Consultation *usecase.ConsultationUseCase
	rateLimiter  *RateLimiter
}

func NewConsultationHandler(consultation *usecase.ConsultationUseCase) *ConsultationHandler {
	return &ConsultationHandler{
		Consultation: consultation,
		// Looser than onboarding: a full consultation is several turns.
		rateLimiter: NewRateLimiter(30, time.Minute),
	}
}

func (h *ConsultationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests, please try again later"})
		return
	}

	var input usecase.ConsultationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	output, err := h.Consultation.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
