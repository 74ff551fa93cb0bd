package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

func TestSubmitOnboardingSuccess(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockLeads.On("Upsert", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Email == "maria@example.com" && l.Status == entity.StatusOnboarding && l.ID != ""
	})).Return(nil)

	uc := NewSubmitOnboardingUseCase(mockLeads, zerolog.Nop())

	out, err := uc.Execute(context.Background(), OnboardingInput{
		Name:       "Maria Silva",
		Email:      "maria@example.com",
		Goal:       "weight_loss",
		Experience: "beginner",
	})

	assert.NoError(t, err)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.LeadID)
	mockLeads.AssertExpectations(t)
}

func TestSubmitOnboardingValidation(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	uc := NewSubmitOnboardingUseCase(mockLeads, zerolog.Nop())

	cases := []struct {
		name  string
		input OnboardingInput
	}{
		{"missing name", OnboardingInput{Email: "a@b.com", Goal: "strength", Experience: "beginner"}},
		{"missing email", OnboardingInput{Name: "A", Goal: "strength", Experience: "beginner"}},
		{"bad email", OnboardingInput{Name: "A", Email: "not-an-email", Goal: "strength", Experience: "beginner"}},
		{"missing goal", OnboardingInput{Name: "A", Email: "a@b.com", Experience: "beginner"}},
		{"missing experience", OnboardingInput{Name: "A", Email: "a@b.com", Goal: "strength"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := uc.Execute(context.Background(), tc.input)
			assert.Nil(t, out)
			assert.True(t, IsDomainError(err), "expected a domain error, got %v", err)
		})
	}

	// Phone stays optional.
	mockLeads.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	out, err := uc.Execute(context.Background(), OnboardingInput{
		Name: "A", Email: "a@b.com", Goal: "strength", Experience: "beginner",
	})
	assert.NoError(t, err)
	assert.True(t, out.Success)

	mockLeads.AssertNotCalled(t, "FindByEmail")
}

func TestSubmitOnboardingRepositoryFailure(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockLeads.On("Upsert", mock.Anything, mock.Anything).Return(assert.AnError)

	uc := NewSubmitOnboardingUseCase(mockLeads, zerolog.Nop())

	out, err := uc.Execute(context.Background(), OnboardingInput{
		Name: "A", Email: "a@b.com", Goal: "strength", Experience: "beginner",
	})

	assert.Nil(t, out)
	assert.True(t, IsTechnicalError(err))
}
