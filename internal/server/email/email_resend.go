package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}

	slog.Debug("email sent", "provider", ProviderResend, "to", msg.To, "messageId", sent.Id)
	return sent.Id, nil
}
