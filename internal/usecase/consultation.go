package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/groq"
	"github.com/willpowerfitness/coach-api/internal/infra/metrics"
)

const (
	userMarker  = "User: "
	coachMarker = "Coach: "

	consultationStages = entity.StageSummary + 1

	emailStatusTimeout = 10 * time.Second
)

type ConsultationInput struct {
	Message  string         `json:"message"`
	UserData UserContextDTO `json:"userData"`
}

type UserContextDTO struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Goal       string `json:"goal"`
	Experience string `json:"experience"`
}

type ConsultationOutput struct {
	Response             string        `json:"response"`
	ConsultationComplete bool          `json:"consultationComplete"`
	ProgressInfo         *ProgressInfo `json:"progressInfo,omitempty"`
}

type ProgressInfo struct {
	Stage       int `json:"stage"`
	TotalStages int `json:"totalStages"`
}

type ConsultationUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Chat   ChatGateway
	Email  EmailService
	Logger zerolog.Logger
}

func NewConsultationUseCase(
	leads entity.LeadRepositoryInterface,
	chat ChatGateway,
	email EmailService,
	logger zerolog.Logger,
) *ConsultationUseCase {
	return &ConsultationUseCase{
		Leads:  leads,
		Chat:   chat,
		Email:  email,
		Logger: logger.With().Str("usecase", "Consultation").Logger(),
	}
}

// Execute runs one consultation turn. The stored stage counter decides
// which question the coach asks; it advances by exactly one per answered
// turn, so progress is monotonic and never depends on what the model
// happened to generate.
func (uc *ConsultationUseCase) Execute(ctx context.Context, input ConsultationInput) (*ConsultationOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "message is required"}
	}
	if errs := validateEmail(input.UserData.Email); len(errs) > 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: joinValidationErrors(errs)}
	}

	lead, err := uc.Leads.FindByEmail(ctx, input.UserData.Email)
	if errors.Is(err, entity.ErrLeadNotFound) {
		// They skipped the onboarding form (e.g. landed straight on the
		// chat widget). Capture them now so the turn has somewhere to live.
		lead = &entity.Lead{
			ID:         uuid.New().String(),
			Email:      input.UserData.Email,
			Name:       input.UserData.Name,
			Goal:       input.UserData.Goal,
			Experience: input.UserData.Experience,
			Status:     entity.StatusOnboarding,
		}
		if err := uc.Leads.Upsert(ctx, lead); err != nil {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to create lead: " + err.Error()}
		}
	} else if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load lead: " + err.Error()}
	}

	messages := make([]groq.Message, 0, 16)
	messages = append(messages, groq.Message{Role: groq.RoleSystem, Content: stagePrompt(lead)})
	messages = append(messages, transcriptMessages(lead.Transcript)...)
	messages = append(messages, groq.Message{Role: groq.RoleUser, Content: input.Message})

	reply, err := uc.Chat.CreateCompletion(ctx, messages, 300, 0.7)
	if err != nil {
		// Conversational surface: degrade instead of 500. The turn is not
		// persisted and the stage does not advance, so the same question
		// comes back when the model recovers.
		uc.Logger.Error().Err(err).Str("email", lead.Email).Int("stage", lead.ConsultationStage).Msg("chat completion failed, serving fallback")
		return &ConsultationOutput{
			Response:             consultationFallback,
			ConsultationComplete: lead.ConsultationComplete(),
			ProgressInfo:         &ProgressInfo{Stage: lead.ConsultationStage, TotalStages: consultationStages},
		}, nil
	}

	answeredSummary := lead.ConsultationStage >= entity.StageSummary

	lead.Transcript += userMarker + input.Message + "\n" + coachMarker + reply + "\n"
	lead.AIResponse = reply
	lead.ConsultationStage++

	next := entity.StatusInConsultation
	if answeredSummary {
		next = entity.StatusConsultationComplete
	}
	if lead.Status.CanTransitionTo(next) {
		lead.Status = next
	}

	if err := uc.Leads.SaveTurn(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save consultation turn: " + err.Error()}
	}

	// First completion: email the summary as a side effect. Best-effort,
	// the turn already succeeded.
	if answeredSummary && lead.ConsultationStage == entity.StageSummary+1 {
		metrics.RecordConsultationCompleted()
		uc.Logger.Info().Str("email", lead.Email).Msg("✅ consultation complete")
		if uc.Email != nil {
			go uc.emailSummary(lead.Email, lead.Name, reply)
		}
	}

	return &ConsultationOutput{
		Response:             reply,
		ConsultationComplete: lead.ConsultationComplete(),
		ProgressInfo:         &ProgressInfo{Stage: lead.ConsultationStage, TotalStages: consultationStages},
	}, nil
}

func (uc *ConsultationUseCase) emailSummary(email, name, summary string) {
	if err := uc.Email.SendConsultationSummary(email, name, summary); err != nil {
		uc.Logger.Warn().Err(err).Str("email", email).Msg("consultation summary email failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), emailStatusTimeout)
	defer cancel()
	if err := uc.Leads.UpdateStatus(ctx, email, entity.StatusConsultationComplete, entity.StatusConsultationEmailed); err != nil {
		uc.Logger.Warn().Err(err).Str("email", email).Msg("could not record consultation_emailed")
	}
}

const consultationFallback = "I'm having a little trouble on my end right now — give me a moment and send that again. Your consultation progress is saved."

// transcriptMessages replays the stored transcript as role-tagged turns.
// Continuation lines belong to the preceding marker.
func transcriptMessages(transcript string) []groq.Message {
	var msgs []groq.Message
	for _, line := range strings.Split(transcript, "\n") {
		switch {
		case strings.HasPrefix(line, userMarker):
			msgs = append(msgs, groq.Message{Role: groq.RoleUser, Content: strings.TrimPrefix(line, userMarker)})
		case strings.HasPrefix(line, coachMarker):
			msgs = append(msgs, groq.Message{Role: groq.RoleAssistant, Content: strings.TrimPrefix(line, coachMarker)})
		case line != "" && len(msgs) > 0:
			msgs[len(msgs)-1].Content += "\n" + line
		}
	}
	return msgs
}
