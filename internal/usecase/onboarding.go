package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

type OnboardingInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Goal       string `json:"goal"`
	Experience string `json:"experience"`
}

type OnboardingOutput struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId"`
}

type SubmitOnboardingUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Logger zerolog.Logger
}

func NewSubmitOnboardingUseCase(leads entity.LeadRepositoryInterface, logger zerolog.Logger) *SubmitOnboardingUseCase {
	return &SubmitOnboardingUseCase{
		Leads:  leads,
		Logger: logger.With().Str("usecase", "SubmitOnboarding").Logger(),
	}
}

func (uc *SubmitOnboardingUseCase) Execute(ctx context.Context, input OnboardingInput) (*OnboardingOutput, error) {
	if errs := ValidateOnboardingInput(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(errs),
		}
	}

	lead := &entity.Lead{
		ID:         uuid.New().String(),
		Email:      input.Email,
		Name:       input.Name,
		Phone:      input.Phone,
		Goal:       input.Goal,
		Experience: input.Experience,
		Status:     entity.StatusOnboarding,
	}

	// Upsert keyed on email: resubmitting refreshes the contact fields
	// instead of duplicating the row. An in-flight consultation keeps its
	// stage and status.
	if err := uc.Leads.Upsert(ctx, lead); err != nil {
		uc.Logger.Error().Err(err).Str("email", input.Email).Msg("lead upsert failed")
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to save onboarding submission: " + err.Error(),
		}
	}

	uc.Logger.Info().Str("lead_id", lead.ID).Str("goal", lead.Goal).Msg("lead captured")

	return &OnboardingOutput{Success: true, LeadID: lead.ID}, nil
}
