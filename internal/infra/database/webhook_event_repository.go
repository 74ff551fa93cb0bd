package database

import (
	"context"
	"database/sql"
)

// WebhookEventRepository records processed billing event ids. The unique
// key on event_id is what makes webhook processing idempotent: the first
// delivery inserts, every retry conflicts.
type WebhookEventRepository struct {
	DB *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{DB: db}
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type, processed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	var inserted bool
	err := WithRetry(ctx, func(ctx context.Context) error {
		res, err := r.DB.ExecContext(ctx, query, eventID, eventType)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// Forget drops the claim on an event id after a failed processing
// attempt, so the provider's retry is not mistaken for a duplicate.
func (r *WebhookEventRepository) Forget(ctx context.Context, eventID string) error {
	return WithRetry(ctx, func(ctx context.Context) error {
		_, err := r.DB.ExecContext(ctx, `DELETE FROM webhook_events WHERE event_id = $1`, eventID)
		return err
	})
}
