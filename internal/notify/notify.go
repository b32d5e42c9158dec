// Package notify dispatches booking emails. Delivery is best effort by
// contract: callers log failures and move on, a mail outage never blocks or
// rolls back a booking.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// SendGridNotifier sends plain-text email through SendGrid.
type SendGridNotifier struct {
	apiKey   string
	fromName string
	fromAddr string
}

func NewSendGridNotifier(apiKey, fromName, fromAddr string) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:   apiKey,
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (n *SendGridNotifier) Notify(ctx context.Context, msg Message) error {
	client := sendgrid.NewSendClient(n.apiKey)
	from := mail.NewEmail(n.fromName, n.fromAddr)

	for _, recipient := range msg.To {
		m := mail.NewSingleEmail(from, msg.Subject, mail.NewEmail("", recipient), msg.Body, "")
		resp, err := client.SendWithContext(ctx, m)
		if err != nil {
			return fmt.Errorf("sendgrid send to %s: %w", recipient, err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("sendgrid send to %s: status %d: %s", recipient, resp.StatusCode, resp.Body)
		}
	}
	return nil
}

// LogNotifier is the fallback when no SendGrid key is configured. It records
// the message and reports success.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("notification (log only)")
	return nil
}
