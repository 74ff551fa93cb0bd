package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/willpowerfitness/coach-api/internal/entity"
)

// FulfillmentPayload is one welcome-shirt job. EventID ties the job back
// to the billing event that triggered it.
type FulfillmentPayload struct {
	EventID   string                 `json:"event_id"`
	Email     string                 `json:"email"`
	Name      string                 `json:"name"`
	ShirtSize string                 `json:"shirt_size"`
	Address   entity.ShippingAddress `json:"address"`
}

type RabbitMQProducer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishFulfillment(ctx context.Context, payload FulfillmentPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fulfillment payload marshal failed: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // survives a broker restart
		},
	)
	if err != nil {
		return fmt.Errorf("fulfillment publish failed: %w", err)
	}
	return nil
}
