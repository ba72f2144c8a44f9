package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/edumax/leads-service/internal/infra/events"
)

type Producer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{Ch: ch}
}

func (p *Producer) PublishNotification(ctx context.Context, ev events.NotificationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	err = p.Ch.PublishWithContext(
		ctx,
		ExchangeName,
		"", // fanout ignores the routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			MessageId:    ev.ID,
			DeliveryMode: amqp.Transient, // live events, not work items
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}
