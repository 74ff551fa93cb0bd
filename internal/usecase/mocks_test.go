package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/groq"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/openai"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) SaveTurn(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, email string, from, to entity.LeadStatus) error {
	args := m.Called(ctx, email, from, to)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockUserProfileRepository
type MockUserProfileRepository struct {
	mock.Mock
}

func (m *MockUserProfileRepository) Upsert(ctx context.Context, profile *entity.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserProfileRepository) FindOrCreate(ctx context.Context, userID string) (*entity.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *MockUserProfileRepository) Update(ctx context.Context, profile *entity.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserProfileRepository) Activate(ctx context.Context, email, stripeCustomerID, stripeSubscriptionID string) (bool, error) {
	args := m.Called(ctx, email, stripeCustomerID, stripeSubscriptionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProfileRepository) SetShippingDetails(ctx context.Context, email, shirtSize string, address entity.ShippingAddress) error {
	args := m.Called(ctx, email, shirtSize, address)
	return args.Error(0)
}

func (m *MockUserProfileRepository) MarkShirtSent(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProfileRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Append(ctx context.Context, turn *entity.Conversation) error {
	args := m.Called(ctx, turn)
	return args.Error(0)
}

func (m *MockConversationRepository) Recent(ctx context.Context, userID string, limit int) ([]entity.Conversation, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Conversation), args.Error(1)
}

func (m *MockConversationRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockFitnessRepository
type MockFitnessRepository struct {
	mock.Mock
}

func (m *MockFitnessRepository) Append(ctx context.Context, rec *entity.FitnessRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockFitnessRepository) Recent(ctx context.Context, userID, kind string, limit int) ([]entity.FitnessRecord, error) {
	args := m.Called(ctx, userID, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FitnessRecord), args.Error(1)
}

func (m *MockFitnessRepository) AllByUser(ctx context.Context, userID string) ([]entity.FitnessRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FitnessRecord), args.Error(1)
}

func (m *MockFitnessRepository) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockWebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	args := m.Called(ctx, eventID, eventType)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) Forget(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockChatGateway
type MockChatGateway struct {
	mock.Mock
}

func (m *MockChatGateway) CreateCompletion(ctx context.Context, messages []groq.Message, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, messages, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

// MockReasoningGateway
type MockReasoningGateway struct {
	mock.Mock
}

func (m *MockReasoningGateway) CreateCompletion(ctx context.Context, messages []openai.Message, opts openai.CompletionOptions) (string, error) {
	args := m.Called(ctx, messages, opts)
	return args.String(0), args.Error(1)
}

// MockBillingGateway
type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) CreateCustomer(ctx context.Context, input stripe.CreateCustomerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) CreateCheckoutSession(ctx context.Context, input stripe.CheckoutSessionInput) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockBillingGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*stripe.SubscriptionResult, error) {
	args := m.Called(ctx, customerID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.SubscriptionResult), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishFulfillment(ctx context.Context, payload queue.FulfillmentPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendConsultationSummary(to, name, summary string) error {
	args := m.Called(to, name, summary)
	return args.Error(0)
}

func (m *MockEmailService) SendWelcome(to, name string) error {
	args := m.Called(to, name)
	return args.Error(0)
}
