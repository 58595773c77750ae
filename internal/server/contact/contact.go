package contact

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gfxtab/gfxtab-api/internal/server/email"
)

// ErrDispatchFailed is the only error Send returns. Provider details are
// logged, never returned.
var ErrDispatchFailed = errors.New("failed to dispatch contact message")

// Dispatcher turns contact submissions into emails for a fixed recipient
type Dispatcher struct {
	sender    email.Sender
	from      string
	recipient string
}

func NewDispatcher(sender email.Sender, cfg *email.Config) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		from:      cfg.SenderEmail,
		recipient: cfg.RecipientEmail,
	}
}

// Send renders sub and hands it to the provider, waiting for the result.
// The provider call is detached from ctx cancellation so a client hanging up
// does not abort a message that is already in flight.
func (d *Dispatcher) Send(ctx context.Context, sub *Submission) error {
	msg := &email.Message{
		From:     d.from,
		To:       []string{d.recipient},
		Subject:  Subject(sub),
		HTMLBody: RenderBody(sub),
	}

	messageID, err := d.sender.Send(context.WithoutCancel(ctx), msg)
	if err != nil {
		slog.Error("failed to send contact email", "error", err, "submission", sub.String())
		return ErrDispatchFailed
	}

	slog.Info("contact email sent", "messageId", messageID)
	return nil
}
