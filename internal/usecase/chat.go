package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/groq"
)

const chatHistoryLimit = 10

type ChatInput struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type ChatOutput struct {
	Response string `json:"response"`
	Upsell   bool   `json:"upsell,omitempty"`
}

type CoachChatUseCase struct {
	Profiles      entity.UserProfileRepositoryInterface
	Conversations entity.ConversationRepositoryInterface
	Chat          ChatGateway
	Logger        zerolog.Logger
}

func NewCoachChatUseCase(
	profiles entity.UserProfileRepositoryInterface,
	conversations entity.ConversationRepositoryInterface,
	chat ChatGateway,
	logger zerolog.Logger,
) *CoachChatUseCase {
	return &CoachChatUseCase{
		Profiles:      profiles,
		Conversations: conversations,
		Chat:          chat,
		Logger:        logger.With().Str("usecase", "CoachChat").Logger(),
	}
}

// Execute answers one coaching chat message. Members only: anyone
// without an active subscription gets the upsell reply and no
// conversation row is written for the call.
func (uc *CoachChatUseCase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	if strings.TrimSpace(input.Message) == "" || strings.TrimSpace(input.UserID) == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "message and userId are required"}
	}

	profile, err := uc.Profiles.FindOrCreate(ctx, input.UserID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load profile: " + err.Error()}
	}

	if !profile.IsActive() {
		return &ChatOutput{Response: upsellMessage(profile.Name), Upsell: true}, nil
	}

	history, err := uc.Conversations.Recent(ctx, input.UserID, chatHistoryLimit)
	if err != nil {
		uc.Logger.Warn().Err(err).Str("user_id", input.UserID).Msg("history fetch failed, answering without it")
		history = nil
	}

	messages := make([]groq.Message, 0, 2*len(history)+2)
	messages = append(messages, groq.Message{Role: groq.RoleSystem, Content: chatSystemPrompt(profile)})
	for _, turn := range history {
		messages = append(messages,
			groq.Message{Role: groq.RoleUser, Content: turn.UserMessage},
			groq.Message{Role: groq.RoleAssistant, Content: turn.AIResponse},
		)
	}
	messages = append(messages, groq.Message{Role: groq.RoleUser, Content: input.Message})

	fallback := false
	reply, err := uc.Chat.CreateCompletion(ctx, messages, 300, 0.7)
	if err != nil {
		// Availability beats correctness here: hand back a canned but
		// on-topic reply instead of a 500.
		uc.Logger.Error().Err(err).Str("user_id", input.UserID).Msg("chat completion failed, serving fallback")
		reply = fallbackReply(input.Message)
		fallback = true
	}

	turnCtx, _ := json.Marshal(map[string]any{
		"goal":     profile.Goal,
		"source":   "chat",
		"fallback": fallback,
	})
	turn := &entity.Conversation{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		UserMessage: input.Message,
		AIResponse:  reply,
		Context:     turnCtx,
	}
	if err := uc.Conversations.Append(ctx, turn); err != nil {
		uc.Logger.Warn().Err(err).Str("user_id", input.UserID).Msg("conversation row not stored")
	}

	return &ChatOutput{Response: reply}, nil
}

func upsellMessage(name string) string {
	return "Hey " + displayName(name) + "! Your AI coach is part of the WillPower Fitness Elite Membership. " +
		"Join today for a fully personalized program, weekly plan adjustments, nutrition guidance and a welcome gift shipped to your door — then ask me anything, anytime."
}

var workoutWords = []string{"workout", "exercise", "train", "lift", "squat", "bench", "deadlift", "cardio", "reps", "sets", "gym"}

func fallbackReply(message string) string {
	lower := strings.ToLower(message)
	for _, w := range workoutWords {
		if strings.Contains(lower, w) {
			return "I can't reach my training brain right now, but here's the rule of thumb: warm up properly, keep your form strict, and stop 1-2 reps short of failure. Ask me again in a minute and I'll tailor it to your program."
		}
	}
	return "I'm having trouble connecting right now — give me a minute and try again. Your coaching history is safe and I'll pick up right where we left off."
}
