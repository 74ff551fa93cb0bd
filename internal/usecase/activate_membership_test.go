package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
)

func checkoutCompletedEvent(t *testing.T, id string) stripe.Event {
	t.Helper()
	object, err := json.Marshal(map[string]any{
		"id":           "cs_test_1",
		"customer":     "cus_123",
		"subscription": "sub_456",
		"customer_details": map[string]string{
			"email": "buyer@example.com",
			"name":  "Paula Reis",
		},
		"custom_fields": []map[string]any{
			{"key": "tshirt_size", "dropdown": map[string]string{"value": "L"}},
			{"key": "shipping_address", "text": map[string]string{"value": "123 Main St\nAustin, TX 78701"}},
		},
	})
	assert.NoError(t, err)

	return stripe.Event{
		ID:   id,
		Type: stripe.EventCheckoutSessionCompleted,
		Data: stripe.EventData{Object: object},
	}
}

func TestActivateMembershipHappyPath(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockEvents := new(MockWebhookEventRepository)
	mockQueue := new(MockQueueProducer)

	mockEvents.On("MarkProcessed", mock.Anything, "evt_1", stripe.EventCheckoutSessionCompleted).Return(true, nil)
	mockProfiles.On("SetShippingDetails", mock.Anything, "buyer@example.com", "L", mock.MatchedBy(func(a entity.ShippingAddress) bool {
		return a.Line1 == "123 Main St" && a.City == "Austin" && a.State == "TX" && a.Zip == "78701"
	})).Return(nil)
	mockProfiles.On("Activate", mock.Anything, "buyer@example.com", "cus_123", "sub_456").Return(true, nil)

	lead := &entity.Lead{Email: "buyer@example.com", Status: entity.StatusPaymentPending}
	mockLeads.On("FindByEmail", mock.Anything, "buyer@example.com").Return(lead, nil)
	mockLeads.On("UpdateStatus", mock.Anything, "buyer@example.com",
		entity.StatusPaymentPending, entity.StatusActiveSubscriber).Return(nil)

	shipped := entity.NewUserProfile("buyer@example.com", "Paula Reis")
	shipped.ShirtSize = "L"
	shipped.ShippingAddress = entity.ShippingAddress{Line1: "123 Main St", City: "Austin", State: "TX", Zip: "78701", Country: "US"}
	mockProfiles.On("FindOrCreate", mock.Anything, "buyer@example.com").Return(shipped, nil)
	mockQueue.On("PublishFulfillment", mock.Anything, mock.MatchedBy(func(p queue.FulfillmentPayload) bool {
		return p.Email == "buyer@example.com" && p.ShirtSize == "L" && p.EventID == "evt_1"
	})).Return(nil)

	uc := NewActivateMembershipUseCase(mockLeads, mockProfiles, mockEvents, mockQueue, nil, zerolog.Nop())

	err := uc.Execute(context.Background(), checkoutCompletedEvent(t, "evt_1"))

	assert.NoError(t, err)
	mockProfiles.AssertExpectations(t)
	mockLeads.AssertExpectations(t)
	mockQueue.AssertExpectations(t)
}

func TestActivateMembershipDuplicateDeliveryIsNoop(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockEvents := new(MockWebhookEventRepository)
	mockQueue := new(MockQueueProducer)

	mockEvents.On("MarkProcessed", mock.Anything, "evt_dup", stripe.EventCheckoutSessionCompleted).Return(false, nil)

	uc := NewActivateMembershipUseCase(mockLeads, mockProfiles, mockEvents, mockQueue, nil, zerolog.Nop())

	err := uc.Execute(context.Background(), checkoutCompletedEvent(t, "evt_dup"))

	assert.NoError(t, err)
	mockProfiles.AssertNotCalled(t, "Activate")
	mockQueue.AssertNotCalled(t, "PublishFulfillment")
}

func TestActivateMembershipIgnoresOtherEventTypes(t *testing.T) {
	mockEvents := new(MockWebhookEventRepository)
	uc := NewActivateMembershipUseCase(nil, nil, mockEvents, nil, nil, zerolog.Nop())

	err := uc.Execute(context.Background(), stripe.Event{ID: "evt_x", Type: stripe.EventInvoicePaymentFailed})

	assert.NoError(t, err)
	mockEvents.AssertNotCalled(t, "MarkProcessed")
}

func TestActivateMembershipSkipsShirtWhenAlreadySent(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockEvents := new(MockWebhookEventRepository)
	mockQueue := new(MockQueueProducer)

	mockEvents.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mockProfiles.On("SetShippingDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockProfiles.On("Activate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockLeads.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, entity.ErrLeadNotFound)

	already := entity.NewUserProfile("buyer@example.com", "Paula Reis")
	already.WelcomeShirtSent = true
	already.ShippingAddress = entity.ShippingAddress{Line1: "123 Main St"}
	mockProfiles.On("FindOrCreate", mock.Anything, "buyer@example.com").Return(already, nil)

	uc := NewActivateMembershipUseCase(mockLeads, mockProfiles, mockEvents, mockQueue, nil, zerolog.Nop())

	err := uc.Execute(context.Background(), checkoutCompletedEvent(t, "evt_2"))

	assert.NoError(t, err)
	mockQueue.AssertNotCalled(t, "PublishFulfillment")
}

func TestActivateMembershipQueueFailureDoesNotFailEvent(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockEvents := new(MockWebhookEventRepository)
	mockQueue := new(MockQueueProducer)

	mockEvents.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mockProfiles.On("SetShippingDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockProfiles.On("Activate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	mockLeads.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, entity.ErrLeadNotFound)

	pending := entity.NewUserProfile("buyer@example.com", "Paula Reis")
	pending.ShippingAddress = entity.ShippingAddress{Line1: "123 Main St"}
	mockProfiles.On("FindOrCreate", mock.Anything, mock.Anything).Return(pending, nil)
	mockQueue.On("PublishFulfillment", mock.Anything, mock.Anything).Return(assert.AnError)

	uc := NewActivateMembershipUseCase(mockLeads, mockProfiles, mockEvents, mockQueue, nil, zerolog.Nop())

	// Activation is authoritative; a broker hiccup must not bounce the
	// webhook into Stripe retries.
	err := uc.Execute(context.Background(), checkoutCompletedEvent(t, "evt_3"))

	assert.NoError(t, err)
}

func TestActivateMembershipRetryAfterTransientFailureActivates(t *testing.T) {
	mockLeads := new(MockLeadRepository)
	mockProfiles := new(MockUserProfileRepository)
	mockEvents := new(MockWebhookEventRepository)
	mockQueue := new(MockQueueProducer)

	// Delivery 1 claims the event, then the activation write fails. The
	// claim must be released so delivery 2 is not acked as a duplicate
	// while the customer is still pending.
	mockEvents.On("MarkProcessed", mock.Anything, "evt_retry", stripe.EventCheckoutSessionCompleted).Return(true, nil).Twice()
	mockEvents.On("Forget", mock.Anything, "evt_retry").Return(nil).Once()
	mockProfiles.On("SetShippingDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockProfiles.On("Activate", mock.Anything, "buyer@example.com", "cus_123", "sub_456").Return(false, assert.AnError).Once()
	mockProfiles.On("Activate", mock.Anything, "buyer@example.com", "cus_123", "sub_456").Return(true, nil).Once()
	mockLeads.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, entity.ErrLeadNotFound)

	shipped := entity.NewUserProfile("buyer@example.com", "Paula Reis")
	shipped.ShirtSize = "L"
	shipped.ShippingAddress = entity.ShippingAddress{Line1: "123 Main St", City: "Austin", State: "TX", Zip: "78701", Country: "US"}
	mockProfiles.On("FindOrCreate", mock.Anything, "buyer@example.com").Return(shipped, nil)
	mockQueue.On("PublishFulfillment", mock.Anything, mock.Anything).Return(nil).Once()

	uc := NewActivateMembershipUseCase(mockLeads, mockProfiles, mockEvents, mockQueue, nil, zerolog.Nop())
	event := checkoutCompletedEvent(t, "evt_retry")

	err := uc.Execute(context.Background(), event)
	assert.True(t, IsTechnicalError(err), "first delivery must surface the failure so the provider redelivers")

	err = uc.Execute(context.Background(), event)
	assert.NoError(t, err)

	mockEvents.AssertExpectations(t)
	mockProfiles.AssertExpectations(t)
	mockQueue.AssertExpectations(t)
}

func TestParseShippingAddress(t *testing.T) {
	addr := parseShippingAddress("500 Gym Ave\nApt 2\nDenver, CO 80202")
	assert.Equal(t, "500 Gym Ave", addr.Line1)
	assert.Equal(t, "Denver", addr.City)
	assert.Equal(t, "CO", addr.State)
	assert.Equal(t, "80202", addr.Zip)
	assert.Equal(t, "US", addr.Country)

	assert.True(t, parseShippingAddress("  \n ").Empty())

	// Street only: still usable, city fields stay blank.
	only := parseShippingAddress("742 Evergreen Terrace")
	assert.Equal(t, "742 Evergreen Terrace", only.Line1)
	assert.Empty(t, only.City)
}
