package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EmailRequestedTopic carries confirmation emails awaiting delivery.
const EmailRequestedTopic = "confirmation_emails"

// EmailRequested is published by the confirmation ledger whenever a code
// needs to reach a mailbox. Delivery is asynchronous; the ledger row is
// written before the event is published.
type EmailRequested struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EventPublisher is the outbound event surface services depend on.
type EventPublisher interface {
	PublishEmailRequested(ctx context.Context, event EmailRequested) error
	Close() error
}

// WatermillPublisher publishes events over any watermill transport.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	if topic == "" {
		topic = EmailRequestedTopic
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

func (p *WatermillPublisher) PublishEmailRequested(ctx context.Context, event EmailRequested) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal email event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish email event: %w", err)
	}

	p.logger.Debug("email event published", "topic", p.topic, "to", event.Email)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events instead of delivering them; used in
// tests and when no transport is configured.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []EmailRequested
	logger *slog.Logger

	// FailNext makes the next publish fail, for error-path tests.
	FailNext error
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) PublishEmailRequested(_ context.Context, event EmailRequested) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext != nil {
		err := p.FailNext
		p.FailNext = nil
		return err
	}
	p.events = append(p.events, event)
	p.logger.Info("mock email event", "to", event.Email, "subject", event.Subject)
	return nil
}

func (p *MockEventPublisher) Close() error {
	return nil
}

// Events returns a copy of everything published so far.
func (p *MockEventPublisher) Events() []EmailRequested {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EmailRequested, len(p.events))
	copy(out, p.events)
	return out
}
