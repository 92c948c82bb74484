// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string

	// DatabaseURL is the Postgres DSN. Empty selects the in-memory stores,
	// which is the development and test default.
	DatabaseURL string

	// RedisURL enables the availability cache when set.
	RedisURL string

	// KafkaBrokers and KafkaTopic enable the Kafka notification publisher
	// when brokers are set. Without them notifications stay in-process.
	KafkaBrokers []string
	KafkaTopic   string

	// JWTSigningKey signs and verifies access tokens.
	JWTSigningKey []byte
	// JWTTTL bounds access token lifetime.
	JWTTTL time.Duration

	// LockTimeout bounds how long inventory mutations wait on a contended
	// blood type.
	LockTimeout time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// FromEnv assembles the configuration, applying defaults for everything
// optional. Only the JWT signing key is required.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:  envOr("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  envOr("KAFKA_NOTIFICATIONS_TOPIC", "bloodbank.notifications"),
		JWTTTL:      24 * time.Hour,
		LockTimeout: 2 * time.Second,
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY is required")
	}
	cfg.JWTSigningKey = []byte(key)

	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("parse JWT_TTL: %w", err)
		}
		cfg.JWTTTL = d
	}

	if lt := os.Getenv("INVENTORY_LOCK_TIMEOUT"); lt != "" {
		d, err := time.ParseDuration(lt)
		if err != nil {
			return nil, fmt.Errorf("parse INVENTORY_LOCK_TIMEOUT: %w", err)
		}
		cfg.LockTimeout = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
