package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/math-u-t/litedrive/internal/config"
)

// ErrMongoURIRequired is returned when no connection string is configured.
var ErrMongoURIRequired = errors.New("mongodb uri is required")

// MongoClientOptions builds driver options from configuration.
func MongoClientOptions(c config.MongoConfig) (*options.ClientOptions, error) {
	if c.URI == "" {
		return nil, ErrMongoURIRequired
	}
	opts := options.Client().
		ApplyURI(c.URI).
		SetAppName("litedrive")
	if c.ConnectTimeoutSec > 0 {
		opts.SetConnectTimeout(time.Duration(c.ConnectTimeoutSec) * time.Second)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongo options: %w", err)
	}
	return opts, nil
}

// NewMongoClient connects a MongoDB client. The caller owns the client and must
// Disconnect it.
func NewMongoClient(ctx context.Context, c config.MongoConfig) (*mongo.Client, error) {
	opts, err := MongoClientOptions(c)
	if err != nil {
		return nil, err
	}
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return cli, nil
}
