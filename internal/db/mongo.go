package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"oxyspa/b2b/internal/config"
)

const (
	connectTimeout         = 10 * time.Second
	serverSelectionTimeout = 5 * time.Second
)

// clientOptions builds the driver options for cfg. Retryable writes are off
// so an insert reaches the server at most once per request.
func clientOptions(cfg *config.Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.DatabaseURL).
		SetAppName(cfg.AppName).
		SetRetryWrites(false).
		SetServerSelectionTimeout(serverSelectionTimeout)
}

// ConnectDB opens the document store named by cfg and verifies the primary
// is reachable.
func ConnectDB(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("Connected to MongoDB database %q as %q", cfg.DatabaseName, cfg.AppName)
	return client, client.Database(cfg.DatabaseName), nil
}

// DisconnectDB closes the client. A nil client is a no-op.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	log.Println("MongoDB connection closed.")
	return nil
}
