package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/willpowerfitness/coach-api/internal/usecase"
)

// GenerationHandler fronts the long-form premium features on the
// reasoning model.
type GenerationHandler struct {
	Generation *usecase.PlanGenerationUseCase
}

func NewGenerationHandler(generation *usecase.PlanGenerationUseCase) *GenerationHandler {
	return &GenerationHandler{Generation: generation}
}

func (h *GenerationHandler) HandleWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var input usecase.WorkoutPlanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	plan, err := h.Generation.GenerateWorkoutPlan(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}

func (h *GenerationHandler) HandleNutritionAnalysis(w http.ResponseWriter, r *http.Request) {
	var input usecase.NutritionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	analysis, err := h.Generation.AnalyzeNutrition(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

func (h *GenerationHandler) HandleProgressAnalysis(w http.ResponseWriter, r *http.Request) {
	var input usecase.ProgressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON"})
		return
	}

	analysis, err := h.Generation.AnalyzeProgress(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
