package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
	"github.com/willpowerfitness/coach-api/internal/infra/metrics"
	"github.com/willpowerfitness/coach-api/internal/infra/queue"
)

type ActivateMembershipUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.UserProfileRepositoryInterface
	Events   entity.WebhookEventRepositoryInterface
	Queue    QueueProducerInterface
	Email    EmailService
	Logger   zerolog.Logger
}

func NewActivateMembershipUseCase(
	leads entity.LeadRepositoryInterface,
	profiles entity.UserProfileRepositoryInterface,
	events entity.WebhookEventRepositoryInterface,
	producer QueueProducerInterface,
	email EmailService,
	logger zerolog.Logger,
) *ActivateMembershipUseCase {
	return &ActivateMembershipUseCase{
		Leads:    leads,
		Profiles: profiles,
		Events:   events,
		Queue:    producer,
		Email:    email,
		Logger:   logger.With().Str("usecase", "ActivateMembership").Logger(),
	}
}

// Execute processes a verified billing event. Activation is authoritative
// and irreversible from this path; the welcome-shirt fulfillment rides a
// durable queue and can never fail the activation.
func (uc *ActivateMembershipUseCase) Execute(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case stripe.EventCheckoutSessionCompleted, stripe.EventInvoicePaymentSucceeded:
	default:
		uc.Logger.Debug().Str("type", event.Type).Str("event_id", event.ID).Msg("ignoring event type")
		return nil
	}

	fresh, err := uc.Events.MarkProcessed(ctx, event.ID, event.Type)
	if err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to record webhook event: " + err.Error()}
	}
	if !fresh {
		uc.Logger.Info().Str("event_id", event.ID).Msg("duplicate delivery, already processed")
		return nil
	}

	payment, err := extractPayment(event)
	if err != nil {
		// A malformed object is permanent: the retry carries the same
		// bytes, so the claim stays and the redelivery is acked as a
		// duplicate instead of failing forever.
		return &DomainError{Code: "BAD_EVENT", Message: err.Error()}
	}
	if payment.Email == "" {
		uc.Logger.Warn().Str("event_id", event.ID).Msg("event carries no customer email, nothing to activate")
		return nil
	}

	if payment.ShirtSize != "" || !payment.Address.Empty() {
		if err := uc.Profiles.SetShippingDetails(ctx, payment.Email, payment.ShirtSize, payment.Address); err != nil {
			uc.Logger.Warn().Err(err).Str("email", payment.Email).Msg("could not store shipping details")
		}
	}

	activated, err := uc.Profiles.Activate(ctx, payment.Email, payment.CustomerID, payment.SubscriptionID)
	if err != nil {
		// Give the event claim back before failing: the handler answers
		// 500, the provider redelivers, and the retry must not be
		// swallowed as a duplicate while the profile is still pending.
		uc.releaseEvent(ctx, event.ID)
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to activate membership: " + err.Error()}
	}
	if activated {
		metrics.RecordSubscriptionActivation()
		uc.Logger.Info().Str("email", payment.Email).Str("event_id", event.ID).Msg("🚀 membership activated")
	}

	uc.advanceLead(ctx, payment.Email)
	uc.maybeQueueWelcomeShirt(ctx, payment)

	if activated && uc.Email != nil {
		go func(email, name string) {
			if err := uc.Email.SendWelcome(email, name); err != nil {
				uc.Logger.Warn().Err(err).Str("email", email).Msg("welcome email failed")
			}
		}(payment.Email, payment.Name)
	}

	return nil
}

// releaseEvent undoes the idempotency claim after a failed attempt.
// Claims are only kept for deliveries that were fully processed (or are
// permanently unprocessable); a transient failure must leave the event
// retryable.
func (uc *ActivateMembershipUseCase) releaseEvent(ctx context.Context, eventID string) {
	if err := uc.Events.Forget(ctx, eventID); err != nil {
		uc.Logger.Error().Err(err).Str("event_id", eventID).Msg("⚠️ could not release event claim, retry will be treated as duplicate")
	}
}

// advanceLead walks the lead forward to active_subscriber through the
// allowed transitions. A lead that never reached payment_pending (e.g.
// checkout opened from an emailed link) is stepped through it.
func (uc *ActivateMembershipUseCase) advanceLead(ctx context.Context, email string) {
	lead, err := uc.Leads.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, entity.ErrLeadNotFound) {
			uc.Logger.Warn().Err(err).Str("email", email).Msg("lead lookup failed during activation")
		}
		return
	}

	for _, next := range []entity.LeadStatus{entity.StatusPaymentPending, entity.StatusActiveSubscriber} {
		if lead.Status == entity.StatusActiveSubscriber {
			return
		}
		if !lead.Status.CanTransitionTo(next) {
			continue
		}
		if err := uc.Leads.UpdateStatus(ctx, email, lead.Status, next); err != nil {
			uc.Logger.Warn().Err(err).Str("email", email).Str("to", string(next)).Msg("lead status update failed")
			return
		}
		lead.Status = next
	}
}

func (uc *ActivateMembershipUseCase) maybeQueueWelcomeShirt(ctx context.Context, payment paymentDetails) {
	profile, err := uc.Profiles.FindOrCreate(ctx, payment.Email)
	if err != nil {
		uc.Logger.Warn().Err(err).Str("email", payment.Email).Msg("profile fetch failed, skipping shirt")
		return
	}
	if profile.WelcomeShirtSent {
		return
	}
	if profile.ShippingAddress.Empty() {
		uc.Logger.Info().Str("email", payment.Email).Msg("no shipping address on file, shirt not queued")
		return
	}

	payload := queue.FulfillmentPayload{
		EventID:   payment.EventID,
		Email:     profile.Email,
		Name:      profile.Name,
		ShirtSize: profile.ShirtSize,
		Address:   profile.ShippingAddress,
	}
	if err := uc.Queue.PublishFulfillment(ctx, payload); err != nil {
		// Deliberate asymmetry: activation stands, fulfillment is retried
		// out of band.
		metrics.RecordIntegrationError("rabbitmq")
		uc.Logger.Error().Err(err).Str("email", payment.Email).Msg("⚠️ activated but shirt job not queued")
		return
	}
	uc.Logger.Info().Str("email", payment.Email).Str("size", profile.ShirtSize).Msg("welcome shirt queued")
}

type paymentDetails struct {
	EventID        string
	CustomerID     string
	SubscriptionID string
	Email          string
	Name           string
	ShirtSize      string
	Address        entity.ShippingAddress
}

func extractPayment(event stripe.Event) (paymentDetails, error) {
	details := paymentDetails{EventID: event.ID}

	switch event.Type {
	case stripe.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSessionObject
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return details, fmt.Errorf("malformed checkout session object: %w", err)
		}
		details.CustomerID = session.Customer
		details.SubscriptionID = session.Subscription
		details.Email = session.CustomerDetails.Email
		details.Name = session.CustomerDetails.Name
		for _, field := range session.CustomFields {
			switch field.Key {
			case "tshirt_size":
				details.ShirtSize = field.Dropdown.Value
			case "shipping_address":
				details.Address = parseShippingAddress(field.Text.Value)
			}
		}

	case stripe.EventInvoicePaymentSucceeded:
		var invoice stripe.InvoiceObject
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return details, fmt.Errorf("malformed invoice object: %w", err)
		}
		details.CustomerID = invoice.Customer
		details.SubscriptionID = invoice.Subscription
		details.Email = invoice.CustomerEmail
		details.Name = invoice.CustomerName
	}

	return details, nil
}

var cityStateZipRe = regexp.MustCompile(`(.+?),?\s+([A-Z]{2})\s+(\d{5})`)

// parseShippingAddress splits the free-text address collected by the
// checkout form. Expected shape: street on the first line, "City, ST
// 12345" on the last.
func parseShippingAddress(raw string) entity.ShippingAddress {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return entity.ShippingAddress{}
	}

	addr := entity.ShippingAddress{Line1: lines[0], Country: "US"}
	if len(lines) >= 2 {
		if m := cityStateZipRe.FindStringSubmatch(lines[len(lines)-1]); m != nil {
			addr.City, addr.State, addr.Zip = m[1], m[2], m[3]
		}
	}
	return addr
}
