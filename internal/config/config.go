// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/govalues/money"
	"golang.org/x/text/language"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

var backends = []string{BackendMemory, BackendPostgres, BackendSQLite}

type Config struct {
	// HTTP server
	Addr            string
	ShutdownTimeout time.Duration

	// Storage
	DataBackend  string
	DatabaseURL  string
	SQLiteDBPath string
	DevSeed      bool

	// AMQP, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Presentation
	Currency string
	Locale   string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the environment. DATA_BACKEND defaults to postgres when DATABASE_URL is
// set and to memory otherwise.
func Load() *Config {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	backend := BackendMemory
	if dsn != "" {
		backend = BackendPostgres
	}
	return &Config{
		Addr:            getEnv("ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", backend)),
		DatabaseURL:  dsn,
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/networth.db"),
		DevSeed:      getEnvBool("DEV_SEED"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "networth"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "snapshot.created"),

		Currency: strings.ToUpper(getEnv("CURRENCY", "USD")),
		Locale:   getEnv("LOCALE", "en-US"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "listen address cannot be empty")
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if !slices.Contains(backends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, backends))
	}
	if c.DataBackend == BackendPostgres && c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required when using postgres backend")
	}
	if c.DataBackend == BackendSQLite && c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := money.ParseCurr(c.Currency); err != nil {
		problems = append(problems, fmt.Sprintf("invalid currency '%s': %v", c.Currency, err))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be json or text", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
