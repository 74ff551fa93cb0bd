package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/openai"
)

// PlanGenerationUseCase drives the long-form, user-initiated generation
// features on the slower reasoning model. Unlike the chat surface these
// propagate errors: the user clicked a button and expects either the
// artifact or an honest failure.
type PlanGenerationUseCase struct {
	Profiles  entity.UserProfileRepositoryInterface
	Fitness   entity.FitnessRecordRepositoryInterface
	Reasoning ReasoningGateway
	Logger    zerolog.Logger
}

func NewPlanGenerationUseCase(
	profiles entity.UserProfileRepositoryInterface,
	fitness entity.FitnessRecordRepositoryInterface,
	reasoning ReasoningGateway,
	logger zerolog.Logger,
) *PlanGenerationUseCase {
	return &PlanGenerationUseCase{
		Profiles:  profiles,
		Fitness:   fitness,
		Reasoning: reasoning,
		Logger:    logger.With().Str("usecase", "PlanGeneration").Logger(),
	}
}

type WorkoutPlanInput struct {
	UserID      string          `json:"userId"`
	Goals       json.RawMessage `json:"goals"`
	Preferences json.RawMessage `json:"preferences"`
}

func (uc *PlanGenerationUseCase) GenerateWorkoutPlan(ctx context.Context, input WorkoutPlanInput) (string, error) {
	profile, err := uc.Profiles.FindOrCreate(ctx, input.UserID)
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load profile: " + err.Error()}
	}

	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: "You are an expert personal trainer creating detailed, personalized workout plans. Analyze the client's profile, goals and preferences and produce a comprehensive program."},
		{Role: openai.RoleUser, Content: fmt.Sprintf(
			"Create a detailed workout plan.\nProfile: %s\nGoals: %s\nPreferences: %s\n\nInclude: weekly schedule, exercise descriptions, sets/reps, progression plan, and safety considerations.",
			profileSummary(profile), string(input.Goals), string(input.Preferences))},
	}

	return uc.complete(ctx, "workout_plan", messages, openai.CompletionOptions{MaxTokens: 2000, Temperature: 0.3})
}

type NutritionInput struct {
	UserID  string          `json:"userId"`
	FoodLog json.RawMessage `json:"foodLog"`
	Goals   json.RawMessage `json:"goals"`
}

func (uc *PlanGenerationUseCase) AnalyzeNutrition(ctx context.Context, input NutritionInput) (string, error) {
	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: "You are a certified nutritionist providing detailed dietary analysis and recommendations."},
		{Role: openai.RoleUser, Content: fmt.Sprintf(
			"Analyze this food log and provide recommendations.\nFood Log: %s\nGoals: %s\n\nInclude: calorie breakdown, macro analysis, nutritional gaps, and specific recommendations.",
			string(input.FoodLog), string(input.Goals))},
	}

	return uc.complete(ctx, "nutrition_analysis", messages, openai.CompletionOptions{MaxTokens: 1500, Temperature: 0.4})
}

type ProgressInput struct {
	UserID string `json:"userId"`
}

// AnalyzeProgress reads the recent fitness log back into the prompt; the
// payloads are opaque JSON so they go in verbatim.
func (uc *PlanGenerationUseCase) AnalyzeProgress(ctx context.Context, input ProgressInput) (string, error) {
	profile, err := uc.Profiles.FindOrCreate(ctx, input.UserID)
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load profile: " + err.Error()}
	}

	workouts, err := uc.Fitness.Recent(ctx, input.UserID, entity.RecordWorkout, 20)
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load workout history: " + err.Error()}
	}
	metrics, err := uc.Fitness.Recent(ctx, input.UserID, entity.RecordProgress, 20)
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load progress metrics: " + err.Error()}
	}

	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: "You are a data-driven fitness coach analyzing a client's progress and providing insights."},
		{Role: openai.RoleUser, Content: fmt.Sprintf(
			"Analyze this client's fitness progress.\nProfile: %s\nWorkout History: %s\nCurrent Metrics: %s\n\nProvide insights on progress, trends, achievements, and areas for improvement.",
			profileSummary(profile), recordsJSON(workouts), recordsJSON(metrics))},
	}

	return uc.complete(ctx, "progress_analysis", messages, openai.CompletionOptions{MaxTokens: 1200, Temperature: 0.3})
}

func (uc *PlanGenerationUseCase) complete(ctx context.Context, kind string, messages []openai.Message, opts openai.CompletionOptions) (string, error) {
	out, err := uc.Reasoning.CreateCompletion(ctx, messages, opts)
	if err != nil {
		uc.Logger.Error().Err(err).Str("kind", kind).Msg("long-form generation failed")
		return "", &TechnicalError{Code: "AI_ERROR", Message: "generation failed: " + err.Error()}
	}
	return out, nil
}

func profileSummary(p *entity.UserProfile) string {
	b, _ := json.Marshal(map[string]string{
		"name":       p.Name,
		"goal":       p.Goal,
		"experience": p.Experience,
	})
	return string(b)
}

func recordsJSON(recs []entity.FitnessRecord) string {
	payloads := make([]json.RawMessage, 0, len(recs))
	for _, r := range recs {
		payloads = append(payloads, r.Payload)
	}
	b, _ := json.Marshal(payloads)
	return string(b)
}
