package email

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ctfground/ctf-service/internal/events"
)

// Dispatcher consumes EmailRequested events and hands them to the mailer.
type Dispatcher struct {
	subscriber message.Subscriber
	topic      string
	mailer     Mailer
	logger     *slog.Logger
}

func NewDispatcher(subscriber message.Subscriber, topic string, mailer Mailer, logger *slog.Logger) *Dispatcher {
	if topic == "" {
		topic = events.EmailRequestedTopic
	}
	return &Dispatcher{
		subscriber: subscriber,
		topic:      topic,
		mailer:     mailer,
		logger:     logger,
	}
}

// Run blocks consuming email events until ctx is cancelled. Delivery
// failures are nacked so the transport can redeliver.
func (d *Dispatcher) Run(ctx context.Context) error {
	messages, err := d.subscriber.Subscribe(ctx, d.topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var event events.EmailRequested
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			d.logger.Error("dropping malformed email event", "error", err, "message_id", msg.UUID)
			msg.Ack()
			continue
		}

		if err := d.mailer.Send(ctx, Message{To: event.Email, Subject: event.Subject, Body: event.Body}); err != nil {
			d.logger.Error("email delivery failed", "error", err, "to", event.Email)
			msg.Nack()
			continue
		}

		d.logger.Info("email delivered", "to", event.Email, "subject", event.Subject)
		msg.Ack()
	}
	return nil
}
