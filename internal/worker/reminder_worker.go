package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/core"
	"scadenze/internal/notify"
	"scadenze/internal/services"
)

// ReminderWorker runs the two halves of the email pipeline: the periodic
// scan that finds bills whose reminder falls due today and publishes them,
// and the consumer side that turns queued messages into deliveries.
type ReminderWorker struct {
	store     services.BillStore
	publisher notify.Sender
	deliverer notify.Sender
}

func NewReminderWorker(store services.BillStore, publisher, deliverer notify.Sender) *ReminderWorker {
	return &ReminderWorker{
		store:     store,
		publisher: publisher,
		deliverer: deliverer,
	}
}

// HandleEmailMessage processes a single email message from AMQP. A
// returned error makes the consumer requeue the delivery.
func (w *ReminderWorker) HandleEmailMessage(ctx context.Context, msg *amqp.EmailMessage) error {
	slog.InfoContext(ctx, "Processing email message",
		"to", msg.To,
		"kind", msg.Kind)

	if err := w.deliverer.SendEmail(ctx, notify.Message{
		Recipient: msg.To,
		Kind:      msg.Kind,
		Payload:   msg.Payload,
	}); err != nil {
		return fmt.Errorf("deliver %s email to %s: %w", msg.Kind, msg.To, err)
	}
	return nil
}

// ScanOnce walks every reminder-enabled bill and publishes a reminder for
// each one whose lead time lands on today. Publishing is fire-and-forget
// per bill: one broken bill or publish never stops the rest of the scan.
func (w *ReminderWorker) ScanOnce(ctx context.Context, today core.Date) (int, error) {
	bills, err := w.store.ReminderBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reminder bills: %w", err)
	}

	published := 0
	for _, rb := range bills {
		checker, err := services.GetReminderChecker(rb.Bill.Frequency)
		if err != nil {
			slog.WarnContext(ctx, "Skipping bill with unknown frequency",
				"bill_id", rb.Bill.ID,
				"notification_frequency", string(rb.Bill.Frequency))
			continue
		}
		if !checker.IsDue(rb.Bill.DueDate, today) {
			continue
		}

		msg := notify.Message{
			Recipient: rb.OwnerEmail,
			Kind:      notify.KindBillReminder,
			Payload: map[string]string{
				"bill_name": rb.Bill.Name,
				"amount":    core.FormatAmount(rb.Bill.Amount),
				"due_date":  rb.Bill.DueDate.Key(),
			},
		}
		if err := w.publisher.SendEmail(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish bill reminder",
				"bill_id", rb.Bill.ID,
				"to", rb.OwnerEmail,
				"error", err)
			continue
		}
		published++
	}

	slog.InfoContext(ctx, "Reminder scan completed",
		"bills_checked", len(bills),
		"reminders_published", published)
	return published, nil
}

// Run scans immediately and then on every tick until the context ends.
func (w *ReminderWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.ScanOnce(ctx, core.Today()); err != nil {
		slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ScanOnce(ctx, core.Today()); err != nil {
				slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
			}
		}
	}
}
