package entity

import "context"

// WebhookEventRepositoryInterface backs the idempotency guard on the
// Stripe webhook: one row per processed event id, inserted before any
// side effect runs.
type WebhookEventRepositoryInterface interface {
	// MarkProcessed returns false when the event id was already recorded,
	// meaning this delivery is a retry and must be acknowledged without
	// re-processing.
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
	// Forget releases a claimed event id so the provider's next retry of
	// the same event is processed again. Used when processing fails after
	// the claim; without it the retry would be swallowed as a duplicate.
	Forget(ctx context.Context, eventID string) error
}
