package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Identity  IdentityConfig
	Gateway   GatewayConfig
	ScanGuard ScanGuardConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// Path is the SQLite database file; ":memory:" style DSNs work too.
	Path string
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketIssued string
	AccessEvents string
}

// IdentityConfig points the issuer at the registry service. Lookups go
// through the gateway, same as every other cross-service call.
type IdentityConfig struct {
	GatewayURL string
	Timeout    time.Duration
}

// GatewayConfig holds the backend base URLs the api-gateway dispatches to.
type GatewayConfig struct {
	RegistryURL   string
	TicketURL     string
	AttractionURL string
}

// ScanGuardConfig controls the turnstile double-scan debounce. A zero TTL
// disables the guard entirely.
type ScanGuardConfig struct {
	TTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8081"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("SQLITE_PATH", "./tickets.db"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				TicketIssued: getEnv("KAFKA_TOPIC_TICKET_ISSUED", "ticket-issued"),
				AccessEvents: getEnv("KAFKA_TOPIC_ACCESS_EVENTS", "access-events"),
			},
		},
		Identity: IdentityConfig{
			GatewayURL: getEnv("API_GATEWAY_URL", "http://localhost:8000"),
			Timeout:    time.Duration(getEnvInt("IDENTITY_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Gateway: GatewayConfig{
			RegistryURL:   getEnv("REGISTRY_SERVICE_URL", "http://localhost:8080"),
			TicketURL:     getEnv("TICKET_SERVICE_URL", "http://localhost:8081"),
			AttractionURL: getEnv("ATTRACTION_SERVICE_URL", "http://localhost:8082"),
		},
		ScanGuard: ScanGuardConfig{
			TTL: time.Duration(getEnvInt("SCAN_GUARD_TTL_SECONDS", 0)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
