package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/willpowerfitness/coach-api/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps the usecase error taxonomy to HTTP: business
// rejections are 400s with the field detail, infrastructure failures are
// 500s with a generic message (the detail stays in the logs).
func writeError(w http.ResponseWriter, err error) {
	if usecase.IsDomainError(err) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
