// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	BackendBaseURL string        // base URL of the cinema REST API, including /api/v1.0
	BackendTimeout time.Duration // per request timeout towards the backend

	DBUser string // ledger database user
	DBPass string // ledger database password (optional)
	DBHost string
	DBPort string
	DBName string

	JWTSecret string // secret shared with the backend to verify access tokens

	DraftTTL      time.Duration // idle lifetime of a checkout draft
	SubmitLockTTL time.Duration // upper bound on one submission attempt
	ConfirmTTL    time.Duration // lifetime of a row deletion confirmation token

	RabbitMQURL  string // AMQP URL; booking events are not published when empty
	AuditLogPath string // file the booking consumer appends to

	LogLevel       string
	LogDevelopment bool
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		BackendBaseURL: must("BACKEND_BASE_URL"),
		BackendTimeout: envDur("BACKEND_TIMEOUT", 10*time.Second),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		DraftTTL:       time.Duration(mustInt("DRAFT_TTL_MIN")) * time.Minute,
		SubmitLockTTL:  envDur("SUBMIT_LOCK_TTL", 30*time.Second),
		ConfirmTTL:     envDur("CONFIRM_TTL", 2*time.Minute),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		AuditLogPath:   envStr("AUDIT_LOG_PATH", "logs/booking.log"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogDevelopment: envBool("LOG_DEVELOPMENT", false),
	}
}

// IsDev reports whether the gateway runs in a development environment.
func (c Config) IsDev() bool { return c.Env == "dev" || c.Env == "development" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
