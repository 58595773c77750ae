package status

import (
	"context"
	"fmt"

	"github.com/gfxtab/gfxtab-api/internal/db"
	"github.com/gfxtab/gfxtab-api/internal/version"
)

// OpenStore connects the driver selected by cfg
func OpenStore(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Driver {
	case DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURL, db.WithAppName(version.UserAgent()))
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, cfg.Database, cfg.Collection), nil

	case DriverSQLite:
		sqlDB, err := db.NewSqliteDB(db.WithPath(cfg.SQLitePath))
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(sqlDB), nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)
	}
}

// OpenCache builds the cache backend selected by cfg
func OpenCache(ctx context.Context, cfg *CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case CacheMemory:
		return NewMemoryCache(cfg.Size, cfg.TTL), nil

	case CacheRedis:
		client, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client, cfg.TTL), nil

	default:
		return NoopCache(), nil
	}
}
