package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/willpowerfitness/coach-api/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Upsert is the standard create-or-update keyed on email. A resubmitted
// form refreshes the contact fields; an in-flight consultation keeps its
// status, stage and transcript.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, email, name, phone, goal, experience, status, consultation_stage, transcript, ai_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, '', '', NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			goal = EXCLUDED.goal,
			experience = EXCLUDED.experience,
			updated_at = NOW()
		RETURNING id, status, consultation_stage, transcript, ai_response, created_at, updated_at
	`

	return WithRetry(ctx, func(ctx context.Context) error {
		return r.DB.QueryRowContext(ctx, query,
			lead.ID,
			lead.Email,
			lead.Name,
			lead.Phone,
			lead.Goal,
			lead.Experience,
			string(lead.Status),
		).Scan(
			&lead.ID,
			&lead.Status,
			&lead.ConsultationStage,
			&lead.Transcript,
			&lead.AIResponse,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
	})
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `
		SELECT id, email, name, COALESCE(phone, ''), goal, experience, status,
		       consultation_stage, transcript, ai_response, COALESCE(payment_link, ''),
		       created_at, updated_at
		FROM leads
		WHERE email = $1
	`

	var lead entity.Lead
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&lead.ID,
		&lead.Email,
		&lead.Name,
		&lead.Phone,
		&lead.Goal,
		&lead.Experience,
		&lead.Status,
		&lead.ConsultationStage,
		&lead.Transcript,
		&lead.AIResponse,
		&lead.PaymentLink,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// SaveTurn persists the consultation fields after a turn. The stage
// check keeps the counter monotonic even if two turns for the same lead
// race.
func (r *LeadRepository) SaveTurn(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET transcript = $2,
		    ai_response = $3,
		    consultation_stage = $4,
		    status = $5,
		    payment_link = NULLIF($6, ''),
		    updated_at = NOW()
		WHERE email = $1 AND consultation_stage <= $4
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.Email,
		lead.Transcript,
		lead.AIResponse,
		lead.ConsultationStage,
		string(lead.Status),
		lead.PaymentLink,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("lead turn not saved: stale stage for %s", lead.Email)
	}
	return nil
}

// UpdateStatus only writes when the row is still in the expected state,
// so an out-of-order handler can't overwrite a later status.
func (r *LeadRepository) UpdateStatus(ctx context.Context, email string, from, to entity.LeadStatus) error {
	if !from.CanTransitionTo(to) {
		return &entity.InvalidTransitionError{From: from, To: to}
	}

	query := `UPDATE leads SET status = $3, updated_at = NOW() WHERE email = $1 AND status = $2`
	res, err := r.DB.ExecContext(ctx, query, email, string(from), string(to))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("lead %s not in status %q", email, from)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE email = $1`, email)
	return err
}
