package email

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecipients  = errors.New("no recipients")
	ErrInvalidSender = errors.New("invalid mail sender")
)

// NewSender builds the Sender for the configured provider. The underlying
// HTTP clients are created once and shared across requests.
func NewSender(cfg *Config) (Sender, error) {
	switch cfg.Provider {
	case ProviderResend:
		return NewResendSender(cfg.ResendAPIKey), nil
	case ProviderSendgrid:
		return NewSendgridSender(cfg.SendgridAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func validateMessage(msg *Message) error {
	if msg.From == "" {
		return ErrInvalidSender
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}
