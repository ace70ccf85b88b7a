// Package notify abstracts outgoing email. The application only ever calls
// SendEmail; whether that enqueues onto AMQP for the reminder worker or
// just logs the delivery is a composition-time choice.
package notify

import (
	"context"
	"log/slog"

	"scadenze/internal/amqp"
)

// Template kinds understood by the delivery side.
const (
	KindWelcome      = amqp.KindWelcome
	KindBillReminder = amqp.KindBillReminder
	KindTest         = amqp.KindTest
)

// Message is one email to send: recipient, template kind, and the
// template's variables.
type Message struct {
	Recipient string
	Kind      string
	Payload   map[string]string
}

// Sender sends a single email. Callers treat sends as best-effort: a
// returned error is logged by the caller and never fails the primary
// operation.
type Sender interface {
	SendEmail(ctx context.Context, msg Message) error
}

// QueueSender publishes messages onto the AMQP email queue for the
// reminder worker to deliver.
type QueueSender struct {
	client *amqp.Client
}

func NewQueueSender(client *amqp.Client) *QueueSender {
	return &QueueSender{client: client}
}

func (s *QueueSender) SendEmail(ctx context.Context, msg Message) error {
	return s.client.PublishEmail(ctx, amqp.NewEmailMessage(msg.Recipient, msg.Kind, amqp.Payload(msg.Payload)))
}

// LogSender records deliveries in the log instead of sending anything.
// Used by the in-memory backend and as the worker's delivery stand-in
// until a real mail provider is wired.
type LogSender struct{}

func (LogSender) SendEmail(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "Email delivered",
		"to", msg.Recipient,
		"kind", msg.Kind,
		"payload_keys", len(msg.Payload))
	return nil
}
