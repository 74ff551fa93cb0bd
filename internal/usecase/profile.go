package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

// UserProfileUseCase covers the member-facing account surface: profile
// reads and updates, workout logging, the data export and the full
// erasure request.
type UserProfileUseCase struct {
	Profiles      entity.UserProfileRepositoryInterface
	Leads         entity.LeadRepositoryInterface
	Conversations entity.ConversationRepositoryInterface
	Fitness       entity.FitnessRecordRepositoryInterface
	Logger        zerolog.Logger
}

func NewUserProfileUseCase(
	profiles entity.UserProfileRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	conversations entity.ConversationRepositoryInterface,
	fitness entity.FitnessRecordRepositoryInterface,
	logger zerolog.Logger,
) *UserProfileUseCase {
	return &UserProfileUseCase{
		Profiles:      profiles,
		Leads:         leads,
		Conversations: conversations,
		Fitness:       fitness,
		Logger:        logger.With().Str("usecase", "UserProfile").Logger(),
	}
}

func (uc *UserProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "userId is required"}
	}
	profile, err := uc.Profiles.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load profile: " + err.Error()}
	}
	return profile, nil
}

type UpdateProfileInput struct {
	Name       string `json:"name"`
	Goal       string `json:"goal"`
	Experience string `json:"experience"`
	ShirtSize  string `json:"shirtSize"`
}

// UpdateProfile only touches the self-service fields. Subscription state
// and the shirt flag belong to the webhook and the fulfillment worker.
func (uc *UserProfileUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.UserProfile, error) {
	profile, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.Name); v != "" {
		profile.Name = v
	}
	if v := strings.TrimSpace(input.Goal); v != "" {
		profile.Goal = v
	}
	if v := strings.TrimSpace(input.Experience); v != "" {
		profile.Experience = v
	}
	if v := strings.TrimSpace(input.ShirtSize); v != "" {
		profile.ShirtSize = v
	}

	if err := uc.Profiles.Update(ctx, profile); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update profile: " + err.Error()}
	}
	return profile, nil
}

type WorkoutLogInput struct {
	UserID  string          `json:"userId"`
	Workout json.RawMessage `json:"workout"`
}

func (uc *UserProfileUseCase) LogWorkout(ctx context.Context, input WorkoutLogInput) (*entity.FitnessRecord, error) {
	if strings.TrimSpace(input.UserID) == "" || len(input.Workout) == 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "userId and workout are required"}
	}

	rec := &entity.FitnessRecord{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Kind:      entity.RecordWorkout,
		Payload:   input.Workout,
		CreatedAt: time.Now(),
	}
	if err := uc.Fitness.Append(ctx, rec); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to store workout: " + err.Error()}
	}
	return rec, nil
}

type DataExport struct {
	Profile       *entity.UserProfile    `json:"profile"`
	Conversations []entity.Conversation  `json:"conversations"`
	Records       []entity.FitnessRecord `json:"fitnessRecords"`
	ExportedAt    time.Time              `json:"exportedAt"`
}

const exportHistoryLimit = 500

// ExportData bundles everything stored under the user into one document.
func (uc *UserProfileUseCase) ExportData(ctx context.Context, userID string) (*DataExport, error) {
	profile, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations, err := uc.Conversations.Recent(ctx, userID, exportHistoryLimit)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load conversations: " + err.Error()}
	}
	records, err := uc.Fitness.AllByUser(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load fitness records: " + err.Error()}
	}

	return &DataExport{
		Profile:       profile,
		Conversations: conversations,
		Records:       records,
		ExportedAt:    time.Now(),
	}, nil
}

// DeleteUserData is the erasure request: conversations and fitness
// records first, then the lead row, then the profile itself. Any
// failure aborts so a retry can finish the job.
func (uc *UserProfileUseCase) DeleteUserData(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &DomainError{Code: "VALIDATION_ERROR", Message: "userId is required"}
	}

	if err := uc.Conversations.DeleteByUser(ctx, userID); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to delete conversations: " + err.Error()}
	}
	if err := uc.Fitness.DeleteByUser(ctx, userID); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to delete fitness records: " + err.Error()}
	}
	if err := uc.Leads.Delete(ctx, userID); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to delete lead: " + err.Error()}
	}
	if err := uc.Profiles.Delete(ctx, userID); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to delete profile: " + err.Error()}
	}

	uc.Logger.Info().Str("user_id", userID).Msg("user data erased")
	return nil
}
