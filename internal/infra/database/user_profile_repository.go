package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

type UserProfileRepository struct {
	DB *sql.DB
}

func NewUserProfileRepository(db *sql.DB) *UserProfileRepository {
	return &UserProfileRepository{DB: db}
}

const profileColumns = `
	id, email, name, goal, COALESCE(experience, ''), subscription_status,
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
	welcome_shirt_sent, COALESCE(shirt_size, ''),
	COALESCE(ship_line1, ''), COALESCE(ship_city, ''), COALESCE(ship_state, ''),
	COALESCE(ship_zip, ''), COALESCE(ship_country, ''),
	created_at, updated_at`

func scanProfile(row *sql.Row) (*entity.UserProfile, error) {
	var p entity.UserProfile
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Goal, &p.Experience, &p.SubscriptionStatus,
		&p.StripeCustomerID, &p.StripeSubscriptionID,
		&p.WelcomeShirtSent, &p.ShirtSize,
		&p.ShippingAddress.Line1, &p.ShippingAddress.City, &p.ShippingAddress.State,
		&p.ShippingAddress.Zip, &p.ShippingAddress.Country,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserProfileRepository) Upsert(ctx context.Context, profile *entity.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, email, name, goal, experience, subscription_status, stripe_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			goal = EXCLUDED.goal,
			experience = COALESCE(NULLIF(EXCLUDED.experience, ''), user_profiles.experience),
			stripe_customer_id = COALESCE(EXCLUDED.stripe_customer_id, user_profiles.stripe_customer_id),
			updated_at = NOW()
		RETURNING id, subscription_status, welcome_shirt_sent, created_at, updated_at
	`

	return WithRetry(ctx, func(ctx context.Context) error {
		return r.DB.QueryRowContext(ctx, query,
			profile.ID,
			profile.Email,
			profile.Name,
			profile.Goal,
			profile.Experience,
			string(profile.SubscriptionStatus),
			profile.StripeCustomerID,
		).Scan(
			&profile.ID,
			&profile.SubscriptionStatus,
			&profile.WelcomeShirtSent,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		)
	})
}

// FindOrCreate is the lazy-create lookup: userID may be a profile id or
// an email. First contact through chat or a profile fetch creates a stub
// row.
func (r *UserProfileRepository) FindOrCreate(ctx context.Context, userID string) (*entity.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1 OR email = $1`

	profile, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// The product keys users by email, so an unknown id doubles as the
	// email of the stub row.
	stub := entity.NewUserProfile(userID, "")
	if err := r.Upsert(ctx, stub); err != nil {
		// Lost a create race: the other writer's row is fine.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return scanProfile(r.DB.QueryRowContext(ctx, query, userID))
		}
		return nil, err
	}
	return stub, nil
}

func (r *UserProfileRepository) Update(ctx context.Context, profile *entity.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET name = $2, goal = $3, experience = NULLIF($4, ''),
		    shirt_size = NULLIF($5, ''),
		    ship_line1 = NULLIF($6, ''), ship_city = NULLIF($7, ''),
		    ship_state = NULLIF($8, ''), ship_zip = NULLIF($9, ''),
		    ship_country = NULLIF($10, ''),
		    updated_at = NOW()
		WHERE id = $1 OR email = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		profile.ID,
		profile.Name, profile.Goal, profile.Experience,
		profile.ShirtSize,
		profile.ShippingAddress.Line1, profile.ShippingAddress.City,
		profile.ShippingAddress.State, profile.ShippingAddress.Zip,
		profile.ShippingAddress.Country,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrProfileNotFound
	}
	return nil
}

// Activate flips pending -> active and records the Stripe ids. The
// status guard in the WHERE clause makes a duplicate or racing delivery
// a no-op instead of a lost update; it returns whether this call did the
// flip.
func (r *UserProfileRepository) Activate(ctx context.Context, email, stripeCustomerID, stripeSubscriptionID string) (bool, error) {
	// Make sure the row exists; checkout can complete for someone who
	// never got a profile (e.g. payment link shared directly).
	stub := entity.NewUserProfile(email, "")
	stub.StripeCustomerID = stripeCustomerID
	if err := r.Upsert(ctx, stub); err != nil {
		return false, err
	}

	query := `
		UPDATE user_profiles
		SET subscription_status = 'active',
		    stripe_customer_id = COALESCE(NULLIF($2, ''), stripe_customer_id),
		    stripe_subscription_id = COALESCE(NULLIF($3, ''), stripe_subscription_id),
		    updated_at = NOW()
		WHERE email = $1 AND subscription_status = 'pending'
	`
	res, err := r.DB.ExecContext(ctx, query, email, stripeCustomerID, stripeSubscriptionID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserProfileRepository) SetShippingDetails(ctx context.Context, email, shirtSize string, address entity.ShippingAddress) error {
	query := `
		UPDATE user_profiles
		SET shirt_size = COALESCE(NULLIF($2, ''), shirt_size),
		    ship_line1 = COALESCE(NULLIF($3, ''), ship_line1),
		    ship_city = COALESCE(NULLIF($4, ''), ship_city),
		    ship_state = COALESCE(NULLIF($5, ''), ship_state),
		    ship_zip = COALESCE(NULLIF($6, ''), ship_zip),
		    ship_country = COALESCE(NULLIF($7, ''), ship_country),
		    updated_at = NOW()
		WHERE email = $1
	`
	_, err := r.DB.ExecContext(ctx, query, email, shirtSize,
		address.Line1, address.City, address.State, address.Zip, address.Country)
	return err
}

// MarkShirtSent claims the one-shot flag. Returns false when another
// writer got there first.
func (r *UserProfileRepository) MarkShirtSent(ctx context.Context, email string) (bool, error) {
	query := `
		UPDATE user_profiles
		SET welcome_shirt_sent = TRUE, updated_at = NOW()
		WHERE email = $1 AND welcome_shirt_sent = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query, email)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *UserProfileRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1 OR email = $1`, userID)
	return err
}
