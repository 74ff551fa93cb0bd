package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/willpowerfitness/coach-api/internal/usecase"
)

type ChatHandler struct {
	Chat *usecase.CoachChatUseCase
}

func NewChatHandler(chat *usecase.CoachChatUseCase) *ChatHandler {
	return &ChatHandler{Chat: chat}
}

func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	output, err := h.Chat.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
