package events

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	Exchange  string        `mapstructure:"exchange"`
	QueueSize int           `mapstructure:"queue_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
		return fmt.Errorf("events `url` must be an amqp:// or amqps:// url")
	}
	return nil
}

func (c Config) LogValue() slog.Value {
	redacted := ""
	if u, err := url.Parse(c.URL); err == nil && c.URL != "" {
		redacted = u.Redacted()
	}
	return slog.GroupValue(
		slog.Bool("enabled", c.Enabled),
		slog.String("url", redacted),
		slog.String("exchange", c.Exchange),
		slog.Int("queue_size", c.QueueSize),
		slog.Duration("timeout", c.Timeout),
	)
}
