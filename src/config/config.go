package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

type Config struct {
	HTTPPort                string
	StoreDriver             string
	MongoDBConnectionString string
	MongoDBDatabaseName     string
	RabbitMQHostName        string
	RabbitMQExchange        string
	SessionBufferSize       int
	RelayBufferSize         int
	ReplayInterval          time.Duration
	StatsSnapshotInterval   time.Duration
	SeedMenu                bool
}

func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables only")
	}

	config := &Config{
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		StoreDriver:             getEnv("STORE_DRIVER", StoreDriverMongo),
		MongoDBConnectionString: os.Getenv("MONGODB_CONNECTION_STRING"),
		MongoDBDatabaseName:     getEnv("MONGODB_DATABASE_NAME", "pos-db"),
		RabbitMQHostName:        os.Getenv("RABBITMQ_HOSTNAME"),
		RabbitMQExchange:        getEnv("RABBITMQ_EXCHANGE", "pos_order_events"),
	}

	var err error
	if config.SessionBufferSize, err = getEnvInt("SESSION_BUFFER_SIZE", 64); err != nil {
		return nil, err
	}
	if config.RelayBufferSize, err = getEnvInt("RELAY_BUFFER_SIZE", 1024); err != nil {
		return nil, err
	}
	if config.ReplayInterval, err = getEnvDuration("REPLAY_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if config.StatsSnapshotInterval, err = getEnvDuration("STATS_SNAPSHOT_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if config.SeedMenu, err = getEnvBool("SEED_MENU", true); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoDBConnectionString == "" {
			return errors.New("MONGODB_CONNECTION_STRING is required for the mongo store driver")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionBufferSize <= 0 {
		return errors.New("SESSION_BUFFER_SIZE must be positive")
	}
	if c.RelayBufferSize <= 0 {
		return errors.New("RELAY_BUFFER_SIZE must be positive")
	}
	if c.ReplayInterval <= 0 || c.StatsSnapshotInterval <= 0 {
		return errors.New("job intervals must be positive")
	}
	return nil
}

// RelayEnabled reports whether committed order events are forwarded to RabbitMQ.
func (c *Config) RelayEnabled() bool {
	return c.RabbitMQHostName != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
