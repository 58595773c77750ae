package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridSender struct {
	client *sendgrid.Client
}

func NewSendgridSender(apiKey string) *SendgridSender {
	return &SendgridSender{client: sendgrid.NewSendClient(apiKey)}
}

// newSendgridSenderWithHost points the client at a different API host
func newSendgridSenderWithHost(apiKey, host string) *SendgridSender {
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendgridSender{client: &sendgrid.Client{Request: req}}
}

func (s *SendgridSender) Send(ctx context.Context, msg *Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}

	from, err := sendgridAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSender, err)
	}

	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		addr, err := sendgridAddress(to)
		if err != nil {
			return "", fmt.Errorf("invalid recipient %q: %w", to, err)
		}
		p.AddTos(addr)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = msg.Subject
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return "", fmt.Errorf("sendgrid: %w", err)
	}
	// sendgrid reports API rejections as a response, not an error
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}

	messageID := firstHeader(resp.Headers, "X-Message-Id")
	slog.Debug("email sent", "provider", ProviderSendgrid, "to", msg.To, "status", resp.StatusCode, "messageId", messageID)
	return messageID, nil
}

func sendgridAddress(s string) (*sgmail.Email, error) {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return sgmail.NewEmail(addr.Name, addr.Address), nil
}

func firstHeader(headers map[string][]string, key string) string {
	if v := headers[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
