package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gfxtab/gfxtab-api/internal/server"
	"github.com/gfxtab/gfxtab-api/internal/server/email"
	"github.com/gfxtab/gfxtab-api/internal/server/events"
	"github.com/gfxtab/gfxtab-api/internal/server/status"
	"github.com/gfxtab/gfxtab-api/internal/version"
)

const envPrefix = "GFXTAB"

// unprefixed variables accepted alongside GFXTAB_*, for deployments that
// already export them
var envAliases = map[string]string{
	"store.mongo_url":        "MONGO_URL",
	"store.database":         "DB_NAME",
	"email.resend_api_key":   "RESEND_API_KEY",
	"email.sendgrid_api_key": "SENDGRID_API_KEY",
	"email.sender_email":     "SENDER_EMAIL",
	"email.recipient_email":  "RECIPIENT_EMAIL",
	"http.cors_origins":      "CORS_ORIGINS",
	"cache.redis_url":        "REDIS_URL",
	"events.url":             "RABBITMQ_URL",
	"port":                   "PORT",
	"log_level":              "LOG_LEVEL",
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "GFXTAB API server",
		Version:       version.Detailed(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				setupLogger(slog.LevelInfo)
				slog.Error("config", "error", err)
				return err
			}

			level, err := parseLogLevel(v.GetString("log_level"))
			if err != nil {
				return err
			}
			setupLogger(level)

			cfg, err := loadConfig(v)
			if err != nil {
				slog.Error("config", "error", err)
				return err
			}
			slog.Info("gfxtab config", "version", version.Short(), "config", cfg)

			srv, err := server.New(cmd.Context(), cfg)
			if err != nil {
				slog.Error("server init", "error", err)
				return err
			}
			defer slog.Info("Bye!")
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	cmd.Flags().StringP("cert", "c", "", "Path to the certificate file")
	cmd.Flags().StringP("key", "k", "", "Path to the key file")
	cmd.Flags().StringP("config", "f", "", "Path to a yaml or json config file")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func setupLogger(level slog.Level) {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// newViper layers defaults, the optional config file, environment and flags
// on a fresh instance, lowest precedence first.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read '%s': %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, err
		}
	}

	flags := map[string]string{
		"http.addr":      "bind",
		"http.cert_file": "cert",
		"http.key_file":  "key",
		"log_level":      "log-level",
	}
	for key, name := range flags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", server.DefaultAddr)
	v.SetDefault("http.cert_file", "")
	v.SetDefault("http.key_file", "")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.read_timeout", server.DefaultReadTimeout)
	v.SetDefault("http.write_timeout", server.DefaultWriteTimeout)

	v.SetDefault("store.driver", status.DriverMongo)
	v.SetDefault("store.mongo_url", "")
	v.SetDefault("store.database", "")
	v.SetDefault("store.collection", status.DefaultCollection)
	v.SetDefault("store.sqlite_path", "gfxtab.db")

	v.SetDefault("cache.backend", status.CacheMemory)
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.redis_url", "")

	v.SetDefault("email.provider", email.ProviderResend)
	v.SetDefault("email.resend_api_key", "")
	v.SetDefault("email.sendgrid_api_key", "")
	v.SetDefault("email.sender_email", email.DefaultSenderEmail)
	v.SetDefault("email.recipient_email", email.DefaultRecipientEmail)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", "")
	v.SetDefault("events.exchange", "")
	v.SetDefault("events.queue_size", events.DefaultQueueSize)
	v.SetDefault("events.timeout", events.DefaultTimeout)

	v.SetDefault("port", "")
	v.SetDefault("log_level", "info")
}

func loadConfig(v *viper.Viper) (*server.Config, error) {
	var cfg server.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	// PORT only applies when no address was chosen explicitly
	if port := v.GetString("port"); port != "" && cfg.HTTP.Addr == server.DefaultAddr {
		cfg.HTTP.Addr = "0.0.0.0:" + port
	}

	cfg.HTTP.CORSOrigins = splitOrigins(cfg.HTTP.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// splitOrigins normalizes CORS_ORIGINS="a, b" and list forms alike
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
