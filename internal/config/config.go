package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for a replay run.
type Config struct {
	// DatabaseURL selects the postgres stores; empty means in-memory.
	DatabaseURL string
	// KafkaBrokers selects the Kafka publisher; empty means events are
	// discarded.
	KafkaBrokers []string
	// LogLevel controls the diagnostics channel (zap level names).
	LogLevel string
}

// Load reads configuration from the environment, honouring a local .env
// file when one exists.
func Load() Config {
	_ = godotenv.Load() // a missing .env is fine

	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	return cfg
}
