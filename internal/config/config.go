package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only fit for local runs.
const DefaultJWTSecret = "remit"

// Config holds every setting the service reads from the environment.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	StoreDriver string

	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBMaxIdleConns  int
	DBMaxOpenConns  int
	DBConnLifetime  time.Duration
	DBConnIdleTime  time.Duration
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	KafkaBrokers    []string
	KafkaTopic      string
	Notifiers       []string
	JWTSecret       string
	TransferTimeout time.Duration
	IdempotencyTTL  time.Duration
	AllowOrigins    string
}

// LoadEnv loads variables from a .env file if present. A missing file is
// not an error: production injects the environment directly.
func LoadEnv() error {
	return godotenv.Load()
}

// Load reads the environment into a Config, applying defaults.
func Load() *Config {
	return &Config{
		Port:        GetEnv("PORT", "3000"),
		Env:         GetEnv("ENV", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		StoreDriver: GetEnv("STORE_DRIVER", "postgres"),

		DBHost:         GetEnv("DB_HOST", "localhost"),
		DBPort:         GetEnv("DB_PORT", "5432"),
		DBUser:         GetEnv("DB_USER", "postgres"),
		DBPassword:     GetEnv("DB_PASSWORD", "postgres"),
		DBName:         GetEnv("DB_NAME", "remit"),
		DBMaxIdleConns: GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		KafkaBrokers: GetListEnv("KAFKA_BROKERS", nil),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "transaction_completed"),
		Notifiers:    GetListEnv("NOTIFIER", []string{"log"}),

		JWTSecret:       GetEnv("JWT_SECRET", DefaultJWTSecret),
		TransferTimeout: GetDurationEnv("TRANSFER_TIMEOUT", 30*time.Second),
		IdempotencyTTL:  GetDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		AllowOrigins:    GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
	}
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable ("30s", "1h") or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty items.
func GetListEnv(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return defaultVal
	}

	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
