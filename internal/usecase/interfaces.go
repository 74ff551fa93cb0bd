package usecase

import (
	"context"

	"github.com/willpowerfitness/coach-api/internal/infra/integration/groq"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/openai"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
)

// ChatGateway is the low-latency model behind the interactive surfaces
// (consultation turns, member chat). Short replies, availability over
// correctness.
type ChatGateway interface {
	CreateCompletion(ctx context.Context, messages []groq.Message, maxTokens int, temperature float64) (string, error)
}

// ReasoningGateway is the slower large-context model used for long-form
// generation (workout plans, nutrition and progress analysis).
type ReasoningGateway interface {
	CreateCompletion(ctx context.Context, messages []openai.Message, opts openai.CompletionOptions) (string, error)
}

type BillingGateway interface {
	CreateCustomer(ctx context.Context, input stripe.CreateCustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*stripe.SubscriptionResult, error)
}

type WebhookVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type QueueProducerInterface interface {
	PublishFulfillment(ctx context.Context, payload queue.FulfillmentPayload) error
}

type EmailService interface {
	SendConsultationSummary(to, name, summary string) error
	SendWelcome(to, name string) error
}
