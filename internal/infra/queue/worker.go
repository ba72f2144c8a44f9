package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/infra/events"
)

// Worker bridges the AMQP exchange back into this instance's in-process bus.
// Each instance binds its own exclusive queue, so every instance replays the
// full event stream to its local subscribers.
type Worker struct {
	Channel *amqp.Channel
	Bus     *events.Bus
	Logger  *logrus.Logger
}

func NewWorker(ch *amqp.Channel, bus *events.Bus, logger *logrus.Logger) *Worker {
	return &Worker{Channel: ch, Bus: bus, Logger: logger}
}

func (w *Worker) Start(ctx context.Context) error {
	q, err := w.Channel.QueueDeclare(
		"",    // broker-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false,
		nil,
	)
	if err != nil {
		return err
	}

	if err := w.Channel.QueueBind(q.Name, "", ExchangeName, false, nil); err != nil {
		return err
	}

	msgs, err := w.Channel.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return err
	}

	w.Logger.WithField("queue", q.Name).Info("notification event consumer running")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}

				var ev events.NotificationEvent
				if err := json.Unmarshal(d.Body, &ev); err != nil {
					w.Logger.WithError(err).Warn("dropping malformed notification event")
					d.Nack(false, false)
					continue
				}

				w.Bus.Publish(ev)
				d.Ack(false)
			}
		}
	}()

	return nil
}
