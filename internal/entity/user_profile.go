package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Value Object: shipping address for the welcome shirt.
type ShippingAddress struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (a ShippingAddress) Empty() bool {
	return a.Line1 == ""
}

type UserProfile struct {
	ID                   string             `json:"id"`
	Email                string             `json:"email"`
	Name                 string             `json:"name"`
	Goal                 string             `json:"goal"`
	Experience           string             `json:"experience"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status"`
	StripeCustomerID     string             `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string             `json:"stripe_subscription_id,omitempty"`
	WelcomeShirtSent     bool               `json:"welcome_shirt_sent"`
	ShirtSize            string             `json:"shirt_size,omitempty"`
	ShippingAddress      ShippingAddress    `json:"shipping_address,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// NewUserProfile is the lazy-create factory: chat and profile fetches
// create a stub profile on first contact.
func NewUserProfile(email, name string) *UserProfile {
	if name == "" {
		name = "New User"
	}
	return &UserProfile{
		ID:                 uuid.New().String(),
		Email:              email,
		Name:               name,
		Goal:               "general_fitness",
		SubscriptionStatus: SubscriptionPending,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}

func (p *UserProfile) IsActive() bool {
	return p.SubscriptionStatus == SubscriptionActive
}

type UserProfileRepositoryInterface interface {
	Upsert(ctx context.Context, profile *UserProfile) error
	FindOrCreate(ctx context.Context, userID string) (*UserProfile, error)
	Update(ctx context.Context, profile *UserProfile) error
	// Activate flips pending -> active. Guarded in SQL so a racing
	// duplicate delivery cannot produce a lost update.
	Activate(ctx context.Context, email, stripeCustomerID, stripeSubscriptionID string) (bool, error)
	SetShippingDetails(ctx context.Context, email, shirtSize string, address ShippingAddress) error
	// MarkShirtSent returns false when the flag was already set.
	MarkShirtSent(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, userID string) error
}
