package email

import (
	"fmt"
	"log/slog"

	"github.com/gfxtab/gfxtab-api/internal/utils"
)

const (
	ProviderResend   = "resend"
	ProviderSendgrid = "sendgrid"

	DefaultSenderEmail    = "onboarding@resend.dev"
	DefaultRecipientEmail = "contact@example.com"
)

type Config struct {
	Provider       string `mapstructure:"provider"`
	ResendAPIKey   string `mapstructure:"resend_api_key"`
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
	SenderEmail    string `mapstructure:"sender_email"`
	RecipientEmail string `mapstructure:"recipient_email"`
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", c.Provider),
		slog.String("resend_api_key", utils.MaskSecret(c.ResendAPIKey)),
		slog.String("sendgrid_api_key", utils.MaskSecret(c.SendgridAPIKey)),
		slog.String("sender_email", c.SenderEmail),
		slog.String("recipient_email", c.RecipientEmail),
	)
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("email `resend_api_key` is required for the resend provider")
		}
	case ProviderSendgrid:
		if c.SendgridAPIKey == "" {
			return fmt.Errorf("email `sendgrid_api_key` is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Provider)
	}

	if err := utils.ValidateMailbox(c.SenderEmail); err != nil {
		return fmt.Errorf("invalid sender email %q: %w", c.SenderEmail, err)
	}
	if err := utils.ValidateEmail(c.RecipientEmail); err != nil {
		return fmt.Errorf("invalid recipient email %q: %w", c.RecipientEmail, err)
	}
	return nil
}
