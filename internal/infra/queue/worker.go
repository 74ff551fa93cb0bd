package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/willpowerfitness/coach-api/internal/entity"
	"github.com/willpowerfitness/coach-api/internal/infra/integration/printful"
)

// FulfillmentClient is the two-phase print-on-demand contract: create a
// draft order, then confirm it for production.
type FulfillmentClient interface {
	CreateWelcomeShirtOrder(ctx context.Context, recipient printful.Recipient, size string) (int64, error)
	ConfirmOrder(ctx context.Context, orderID int64) error
}

// ShirtFlagRepository is the slice of the profile repository the worker
// needs: read and set the one-shot welcome_shirt_sent flag.
type ShirtFlagRepository interface {
	FindOrCreate(ctx context.Context, userID string) (*entity.UserProfile, error)
	MarkShirtSent(ctx context.Context, email string) (bool, error)
}

type Worker struct {
	Channel    *amqp.Channel
	Fulfiller  FulfillmentClient
	Profiles   ShirtFlagRepository
	JobTimeout time.Duration
	Logger     zerolog.Logger
}

func NewWorker(ch *amqp.Channel, fulfiller FulfillmentClient, profiles ShirtFlagRepository, logger zerolog.Logger) *Worker {
	return &Worker{
		Channel:    ch,
		Fulfiller:  fulfiller,
		Profiles:   profiles,
		JobTimeout: 30 * time.Second,
		Logger:     logger.With().Str("worker", "fulfillment").Logger(),
	}
}

// Start consumes shirt jobs until the channel closes. Manual acks:
// malformed or failed jobs are Nack'd without requeue, which routes them
// to the DLQ.
func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		w.Logger.Fatal().Err(err).Msg("failed to register fulfillment consumer")
	}

	w.Logger.Info().Str("queue", queueName).Msg("fulfillment worker waiting for jobs")

	for d := range msgs {
		var payload FulfillmentPayload
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			w.Logger.Error().Err(err).Msg("malformed fulfillment job, sending to DLQ")
			d.Nack(false, false)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.JobTimeout)
		err := w.Process(ctx, payload)
		cancel()

		if err != nil {
			w.Logger.Error().Err(err).Str("email", payload.Email).Msg("shirt fulfillment failed, sending to DLQ")
			d.Nack(false, false)
			continue
		}
		d.Ack(false)
	}
}

// Process ships one welcome shirt. The one-shot flag is claimed with a
// guarded update after the order is confirmed; a job whose profile is
// already flagged is acked as a no-op so duplicate deliveries can't
// double-ship.
func (w *Worker) Process(ctx context.Context, payload FulfillmentPayload) error {
	profile, err := w.Profiles.FindOrCreate(ctx, payload.Email)
	if err != nil {
		return err
	}
	if profile.WelcomeShirtSent {
		w.Logger.Info().Str("email", payload.Email).Msg("shirt already sent, skipping job")
		return nil
	}

	recipient := printful.Recipient{
		Name:        payload.Name,
		Address1:    payload.Address.Line1,
		City:        payload.Address.City,
		StateCode:   payload.Address.State,
		CountryCode: payload.Address.Country,
		Zip:         payload.Address.Zip,
	}

	orderID, err := w.Fulfiller.CreateWelcomeShirtOrder(ctx, recipient, payload.ShirtSize)
	if err != nil {
		return err
	}
	if err := w.Fulfiller.ConfirmOrder(ctx, orderID); err != nil {
		return err
	}

	claimed, err := w.Profiles.MarkShirtSent(ctx, payload.Email)
	if err != nil {
		// Order is out the door; the flag write failing is log-worthy but
		// not retryable (a retry would ship a second shirt).
		w.Logger.Error().Err(err).Str("email", payload.Email).Int64("order_id", orderID).Msg("shirt shipped but flag not recorded")
		return nil
	}
	if !claimed {
		w.Logger.Warn().Str("email", payload.Email).Int64("order_id", orderID).Msg("flag already set by a concurrent job")
	}

	w.Logger.Info().Str("email", payload.Email).Int64("order_id", orderID).Str("size", payload.ShirtSize).Msg("✅ welcome shirt confirmed")
	return nil
}
