package status

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Driver     string `mapstructure:"driver"`
	MongoURL   string `mapstructure:"mongo_url"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("store `mongo_url` is required for the mongo driver")
		}
		if c.Database == "" {
			return fmt.Errorf("store `database` is required for the mongo driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("store `sqlite_path` is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownDriver, c.Driver)
	}
	return nil
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("driver", c.Driver),
		slog.String("mongo_url", redactURL(c.MongoURL)),
		slog.String("database", c.Database),
		slog.String("collection", c.Collection),
		slog.String("sqlite_path", c.SQLitePath),
	)
}

type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	TTL      time.Duration `mapstructure:"ttl"`
	Size     int           `mapstructure:"size"`
	RedisURL string        `mapstructure:"redis_url"`
}

func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case CacheNone:
		return nil
	case CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("cache `redis_url` is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache `ttl` must be positive")
	}
	if c.Backend == CacheMemory && c.Size <= 0 {
		return fmt.Errorf("cache `size` must be positive")
	}
	return nil
}

func (c CacheConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", c.Backend),
		slog.Duration("ttl", c.TTL),
		slog.Int("size", c.Size),
		slog.String("redis_url", redactURL(c.RedisURL)),
	)
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "*****"
	}
	return u.Redacted()
}
