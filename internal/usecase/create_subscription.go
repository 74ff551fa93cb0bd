package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/stripe"
)

type CreateSubscriptionInput struct {
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	UserData UserContextDTO `json:"userData"`
}

type CreateSubscriptionOutput struct {
	CustomerID  string `json:"customerId"`
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}

type CreateSubscriptionUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Profiles entity.UserProfileRepositoryInterface
	Billing  BillingGateway
	PriceID  string
	Logger   zerolog.Logger
}

func NewCreateSubscriptionUseCase(
	leads entity.LeadRepositoryInterface,
	profiles entity.UserProfileRepositoryInterface,
	billing BillingGateway,
	priceID string,
	logger zerolog.Logger,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		Leads:    leads,
		Profiles: profiles,
		Billing:  billing,
		PriceID:  priceID,
		Logger:   logger.With().Str("usecase", "CreateSubscription").Logger(),
	}
}

// Execute creates the Stripe customer and a subscription-mode checkout
// session. The local writes afterwards are best-effort on purpose: the
// webhook is the source of truth for activation, so a database hiccup
// here must never cost a sale.
func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, input CreateSubscriptionInput) (*CreateSubscriptionOutput, error) {
	if errs := validateEmail(input.Email); len(errs) > 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: joinValidationErrors(errs)}
	}
	if input.Name == "" {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "name is required"}
	}

	customerID, err := uc.Billing.CreateCustomer(ctx, stripe.CreateCustomerInput{
		Email: input.Email,
		Name:  input.Name,
		Metadata: map[string]string{
			"goal":       input.UserData.Goal,
			"experience": input.UserData.Experience,
			"source":     "consultation",
		},
	})
	if err != nil {
		uc.Logger.Error().Err(err).Str("email", input.Email).Msg("stripe customer creation failed")
		return nil, &TechnicalError{Code: "PAYMENT_ERROR", Message: "billing provider rejected the customer: " + err.Error()}
	}

	session, err := uc.Billing.CreateCheckoutSession(ctx, stripe.CheckoutSessionInput{
		CustomerID: customerID,
		Email:      input.Email,
		PriceID:    uc.PriceID,
	})
	if err != nil {
		uc.Logger.Error().Err(err).Str("customer_id", customerID).Msg("checkout session creation failed")
		return nil, &TechnicalError{Code: "PAYMENT_ERROR", Message: "failed to create checkout session: " + err.Error()}
	}

	uc.recordPaymentPending(ctx, input, customerID, session.URL)

	return &CreateSubscriptionOutput{
		CustomerID:  customerID,
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

func (uc *CreateSubscriptionUseCase) recordPaymentPending(ctx context.Context, input CreateSubscriptionInput, customerID, checkoutURL string) {
	profile := entity.NewUserProfile(input.Email, input.Name)
	profile.Goal = orDefault(input.UserData.Goal, profile.Goal)
	profile.Experience = input.UserData.Experience
	profile.StripeCustomerID = customerID
	if err := uc.Profiles.Upsert(ctx, profile); err != nil {
		uc.Logger.Warn().Err(err).Str("email", input.Email).Msg("profile upsert failed, webhook will settle it")
	}

	lead, err := uc.Leads.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, entity.ErrLeadNotFound) {
			uc.Logger.Warn().Err(err).Str("email", input.Email).Msg("lead lookup failed")
		}
		return
	}
	if !lead.Status.CanTransitionTo(entity.StatusPaymentPending) {
		uc.Logger.Info().Str("email", input.Email).Str("status", string(lead.Status)).Msg("lead not ready for payment_pending, leaving as-is")
		return
	}
	lead.PaymentLink = checkoutURL
	if err := uc.Leads.SaveTurn(ctx, lead); err == nil {
		if err := uc.Leads.UpdateStatus(ctx, input.Email, lead.Status, entity.StatusPaymentPending); err != nil {
			uc.Logger.Warn().Err(err).Str("email", input.Email).Msg("lead status update failed")
		}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
