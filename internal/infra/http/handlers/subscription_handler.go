package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/willpowerfitness/coach-api/internal/usecase"
)

type SubscriptionHandler struct {
	CreateSubscription *usecase.CreateSubscriptionUseCase
}

func NewSubscriptionHandler(uc *usecase.CreateSubscriptionUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{CreateSubscription: uc}
}

func (h *SubscriptionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	output, err := h.CreateSubscription.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
