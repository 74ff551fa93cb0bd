package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

func newProfileUC(leads *MockLeadRepository, profiles *MockUserProfileRepository,
	conversations *MockConversationRepository, fitness *MockFitnessRepository) *UserProfileUseCase {
	return NewUserProfileUseCase(profiles, leads, conversations, fitness, zerolog.Nop())
}

func TestUpdateProfileKeepsBlankFields(t *testing.T) {
	mockProfiles := new(MockUserProfileRepository)

	existing := entity.NewUserProfile("ana@example.com", "Ana")
	existing.Goal = "muscle_gain"
	existing.Experience = "advanced"
	mockProfiles.On("FindOrCreate", mock.Anything, "ana@example.com").Return(existing, nil)
	mockProfiles.On("Update", mock.Anything, mock.MatchedBy(func(p *entity.UserProfile) bool {
		// Blank input fields leave the stored values untouched.
		return p.Name == "Ana Paula" && p.Goal == "muscle_gain" && p.Experience == "advanced"
	})).Return(nil)

	uc := newProfileUC(new(MockLeadRepository), mockProfiles, new(MockConversationRepository), new(MockFitnessRepository))

	updated, err := uc.UpdateProfile(context.Background(), "ana@example.com", UpdateProfileInput{Name: "Ana Paula"})

	assert.NoError(t, err)
	assert.Equal(t, "Ana Paula", updated.Name)
	mockProfiles.AssertExpectations(t)
}

func TestLogWorkoutAppendsRecord(t *testing.T) {
	mockFitness := new(MockFitnessRepository)
	mockFitness.On("Append", mock.Anything, mock.MatchedBy(func(r *entity.FitnessRecord) bool {
		return r.UserID == "ana@example.com" && r.Kind == entity.RecordWorkout && r.ID != ""
	})).Return(nil)

	uc := newProfileUC(new(MockLeadRepository), new(MockUserProfileRepository), new(MockConversationRepository), mockFitness)

	rec, err := uc.LogWorkout(context.Background(), WorkoutLogInput{
		UserID:  "ana@example.com",
		Workout: json.RawMessage(`{"exercise":"squat","sets":5}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.RecordWorkout, rec.Kind)
	mockFitness.AssertExpectations(t)
}

func TestExportBundlesEverything(t *testing.T) {
	mockProfiles := new(MockUserProfileRepository)
	mockConversations := new(MockConversationRepository)
	mockFitness := new(MockFitnessRepository)

	mockProfiles.On("FindOrCreate", mock.Anything, "ana@example.com").Return(entity.NewUserProfile("ana@example.com", "Ana"), nil)
	mockConversations.On("Recent", mock.Anything, "ana@example.com", exportHistoryLimit).Return([]entity.Conversation{{ID: "c1"}}, nil)
	mockFitness.On("AllByUser", mock.Anything, "ana@example.com").Return([]entity.FitnessRecord{{ID: "f1"}, {ID: "f2"}}, nil)

	uc := newProfileUC(new(MockLeadRepository), mockProfiles, mockConversations, mockFitness)

	export, err := uc.ExportData(context.Background(), "ana@example.com")

	assert.NoError(t, err)
	assert.Equal(t, "Ana", export.Profile.Name)
	assert.Len(t, export.Conversations, 1)
	assert.Len(t, export.Records, 2)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestDeleteUserDataAbortsOnFailureSoRetryCanFinish(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockConversations := new(MockConversationRepository)
	mockFitness := new(MockFitnessRepository)

	mockConversations.On("DeleteByUser", mock.Anything, "ana@example.com").Return(nil)
	mockFitness.On("DeleteByUser", mock.Anything, "ana@example.com").Return(assert.AnError)

	uc := newProfileUC(mockLeads, mockProfiles, mockConversations, mockFitness)

	err := uc.DeleteUserData(context.Background(), "ana@example.com")

	assert.True(t, IsTechnicalError(err))
	// Profile row outlives the failed pass: it is deleted last.
	mockProfiles.AssertNotCalled(t, "Delete")
	mockLeads.AssertNotCalled(t, "Delete")
}

func TestDeleteUserDataFullPass(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockConversations := new(MockConversationRepository)
	mockFitness := new(MockFitnessRepository)

	mockConversations.On("DeleteByUser", mock.Anything, "ana@example.com").Return(nil)
	mockFitness.On("DeleteByUser", mock.Anything, "ana@example.com").Return(nil)
	mockLeads.On("Delete", mock.Anything, "ana@example.com").Return(nil)
	mockProfiles.On("Delete", mock.Anything, "ana@example.com").Return(nil)

	uc := newProfileUC(mockLeads, mockProfiles, mockConversations, mockFitness)

	assert.NoError(t, uc.DeleteUserData(context.Background(), "ana@example.com"))
	mockProfiles.AssertExpectations(t)
}
