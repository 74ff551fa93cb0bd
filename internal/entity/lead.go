package entity

import (
	"context"
	"time"
)

// LeadStatus is a closed enum. Handlers never write raw strings; every
// move goes through CanTransitionTo so an out-of-order webhook or a
// replayed request can't rewind the funnel.
type LeadStatus string

const (
	StatusOnboarding           LeadStatus = "onboarding"
	StatusInConsultation       LeadStatus = "in_consultation"
	StatusConsultationComplete LeadStatus = "consultation_complete"
	StatusConsultationEmailed  LeadStatus = "consultation_emailed"
	StatusPaymentPending       LeadStatus = "payment_pending"
	StatusActiveSubscriber     LeadStatus = "active_subscriber"
)

var leadTransitions = map[LeadStatus][]LeadStatus{
	StatusOnboarding:           {StatusOnboarding, StatusInConsultation},
	StatusInConsultation:       {StatusInConsultation, StatusConsultationComplete},
	StatusConsultationComplete: {StatusConsultationEmailed, StatusPaymentPending},
	StatusConsultationEmailed:  {StatusPaymentPending},
	StatusPaymentPending:       {StatusActiveSubscriber},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusOnboarding, StatusInConsultation, StatusConsultationComplete,
		StatusConsultationEmailed, StatusPaymentPending, StatusActiveSubscriber:
		return true
	}
	return false
}

func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Consultation stages. The stage counter stored on the Lead is the single
// source of truth for where the script is; it is never inferred from
// generated text.
const (
	StageSchedule  = 0
	StageEquipment = 1
	StageRoutine   = 2
	StageSummary   = 3
)

type Lead struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone,omitempty"`
	Goal              string     `json:"goal"`
	Experience        string     `json:"experience"`
	Status            LeadStatus `json:"status"`
	ConsultationStage int        `json:"consultation_stage"`
	Transcript        string     `json:"transcript"`
	AIResponse        string     `json:"ai_response"`
	PaymentLink       string     `json:"payment_link,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TransitionTo validates the move against the transition table before
// applying it.
func (l *Lead) TransitionTo(next LeadStatus) error {
	if !l.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: l.Status, To: next}
	}
	l.Status = next
	return nil
}

// ConsultationComplete reports whether the lead has answered through the
// summary/pitch stage.
func (l *Lead) ConsultationComplete() bool {
	return l.ConsultationStage > StageSummary
}

type InvalidTransitionError struct {
	From LeadStatus
	To   LeadStatus
}

func (e *InvalidTransitionError) Error() string {
	return "invalid lead status transition: " + string(e.From) + " -> " + string(e.To)
}

type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *Lead) error
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	SaveTurn(ctx context.Context, lead *Lead) error
	UpdateStatus(ctx context.Context, email string, from, to LeadStatus) error
	Delete(ctx context.Context, email string) error
}
