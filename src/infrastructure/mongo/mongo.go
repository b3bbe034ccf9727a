package mongo

import (
	"context"
	"fmt"
	"go-restaurant-pos/src/config"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

var (
	clientInstance *mongo.Client
	clientErr      error
	clientOnce     sync.Once
)

// GetMongoClient connects once per process and verifies the primary is reachable.
func GetMongoClient(cfg *config.Config) (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.MongoDBConnectionString).
			SetServerSelectionTimeout(connectTimeout))
		if err != nil {
			clientErr = fmt.Errorf("failed to connect to MongoDB: %w", err)
			return
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			clientErr = fmt.Errorf("failed to reach MongoDB: %w", err)
			return
		}
		clientInstance = client
	})
	return clientInstance, clientErr
}

func GetDatabase(cfg *config.Config) (*mongo.Database, error) {
	client, err := GetMongoClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.MongoDBDatabaseName), nil
}

// Ping reports whether the shared client can still reach the primary.
func Ping(ctx context.Context) error {
	if clientInstance == nil {
		return fmt.Errorf("mongo client is not connected")
	}
	return clientInstance.Ping(ctx, readpref.Primary())
}

func Disconnect(ctx context.Context) error {
	if clientInstance == nil {
		return nil
	}
	return clientInstance.Disconnect(ctx)
}
