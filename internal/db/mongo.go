package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultMongoPingTimeout = 10 * time.Second

type mongoConfig struct {
	appName     string
	pingTimeout time.Duration
}

type MongoOption func(*mongoConfig)

// WithAppName reports name to the server in the connection handshake
func WithAppName(name string) MongoOption {
	return func(c *mongoConfig) {
		c.appName = name
	}
}

func WithPingTimeout(d time.Duration) MongoOption {
	return func(c *mongoConfig) {
		c.pingTimeout = d
	}
}

// NewMongoClient connects to uri and verifies the primary is reachable.
// The returned client is safe for concurrent use and owns a connection pool;
// callers must Disconnect it on shutdown.
func NewMongoClient(ctx context.Context, uri string, opts ...MongoOption) (*mongo.Client, error) {
	cfg := &mongoConfig{pingTimeout: defaultMongoPingTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	clientOpts := options.Client().ApplyURI(uri)
	if cfg.appName != "" {
		clientOpts.SetAppName(cfg.appName)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("db", "driver", "mongo", "hosts", clientOpts.Hosts)
	return client, nil
}
