package entity

import (
	"context"
	"encoding/json"
	"time"
)

// Conversation is one chat turn. Append-only: rows are never updated or
// deleted outside of a full data-erasure request.
type Conversation struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	UserMessage string          `json:"user_message"`
	AIResponse  string          `json:"ai_response"`
	Context     json.RawMessage `json:"context,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ConversationRepositoryInterface interface {
	Append(ctx context.Context, turn *Conversation) error
	Recent(ctx context.Context, userID string, limit int) ([]Conversation, error)
	DeleteByUser(ctx context.Context, userID string) error
}
