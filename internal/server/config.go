package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gfxtab/gfxtab-api/internal/server/email"
	"github.com/gfxtab/gfxtab-api/internal/server/events"
	"github.com/gfxtab/gfxtab-api/internal/server/status"
)

const (
	DefaultAddr         = "0.0.0.0:8001"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

type Config struct {
	HTTP   HTTPConfig         `mapstructure:"http"`
	Store  status.Config      `mapstructure:"store"`
	Cache  status.CacheConfig `mapstructure:"cache"`
	Email  email.Config       `mapstructure:"email"`
	Events events.Config      `mapstructure:"events"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (c *HTTPConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("http `addr` is required")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("http `cert_file` and `key_file` must be set together")
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("http `cors_origins` entry %q must be \"*\" or start with http:// or https://", origin)
		}
	}
	return nil
}

func (c HTTPConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("cert_file", c.CertFile),
		slog.String("key_file", c.KeyFile),
		slog.Any("cors_origins", c.CORSOrigins),
		slog.Duration("read_timeout", c.ReadTimeout),
		slog.Duration("write_timeout", c.WriteTimeout),
	)
}

func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return nil
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("http", c.HTTP),
		slog.Any("store", c.Store),
		slog.Any("cache", c.Cache),
		slog.Any("email", c.Email),
		slog.Any("events", c.Events),
	)
}
