package database

import (
	"context"
	"database/sql"

	"github.com/willpowerfitness/coach-api/internal/entity"
)

type ConversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

func (r *ConversationRepository) Append(ctx context.Context, turn *entity.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, user_message, ai_response, context, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.DB.ExecContext(ctx, query,
		turn.ID, turn.UserID, turn.UserMessage, turn.AIResponse, []byte(turn.Context))
	return err
}

// Recent returns the last N turns in chronological order.
func (r *ConversationRepository) Recent(ctx context.Context, userID string, limit int) ([]entity.Conversation, error) {
	query := `
		SELECT id, user_id, user_message, ai_response, COALESCE(context, 'null'), created_at
		FROM (
			SELECT * FROM conversations
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []entity.Conversation
	for rows.Next() {
		var t entity.Conversation
		if err := rows.Scan(&t.ID, &t.UserID, &t.UserMessage, &t.AIResponse, &t.Context, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *ConversationRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = $1`, userID)
	return err
}
