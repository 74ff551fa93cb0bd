package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/willpowerfitness/coach-api/internal/usecase"
)

type ProfileHandler struct {
	Profile *usecase.UserProfileUseCase
}

func NewProfileHandler(profile *usecase.UserProfileUseCase) *ProfileHandler {
	return &ProfileHandler{Profile: profile}
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	profile, err := h.Profile.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input usecase.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	profile, err := h.Profile.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) HandleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var input usecase.WorkoutLogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	rec, err := h.Profile.LogWorkout(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *ProfileHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	export, err := h.Profile.ExportData(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="willpower-data-export.json"`)
	writeJSON(w, http.StatusOK, export)
}

func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.Profile.DeleteUserData(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
