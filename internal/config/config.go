package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	ServerDebugMode bool
	LogFormat       string
	EnableHSTS      bool
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string

	StorageBackend string
	RedisURL       string
	DatabaseURL    string
	SQLitePath     string

	OpenAIKey    string
	AIProvider   string
	AIModel      string
	AIBaseURL    string
	AIMaxRetries int

	CompletionTimeout time.Duration
	RequestTimeout    time.Duration
	MaxRequestBytes   int64

	RateLimitEnabled bool
	RateLimit        string

	RabbitMQURL string

	OTELEnabled  bool
	OTELEndpoint string
}

// WriteTimeout is the HTTP server write timeout. It must outlive the per-request timeout
// so a slow completion is answered by the timeout middleware instead of a dropped connection.
func (c *Config) WriteTimeout() time.Duration {
	return c.RequestTimeout + 30*time.Second
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom loads configuration using lookup in place of os.Getenv
func LoadFrom(lookup func(string) string) (*Config, error) {
	env := source(lookup)

	cfg := &Config{
		ServerPort:      env.get("SERVER_PORT", "8080"),
		ServerDebugMode: env.getBool("SERVER_DEBUG_MODE", false),
		LogFormat:       env.get("LOG_FORMAT", "json"),
		EnableHSTS:      env.getBool("ENABLE_HSTS", false),
		ShutdownTimeout: env.getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORSAllowedOrigins: env.getList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		StorageBackend: strings.ToLower(env.get("STORAGE_BACKEND", BackendSQLite)),
		RedisURL:       env.get("REDIS_URL", ""),
		DatabaseURL:    env.get("DATABASE_URL", ""),
		SQLitePath:     env.get("SQLITE_PATH", "data/review-memory.db"),

		OpenAIKey:    env.get("OPENAI_API_KEY", ""),
		AIProvider:   env.get("AI_PROVIDER", "openai"),
		AIModel:      env.get("AI_MODEL", ""),
		AIBaseURL:    env.get("AI_BASE_URL", ""),
		AIMaxRetries: env.getInt("AI_MAX_RETRIES", 0),

		CompletionTimeout: env.getDuration("COMPLETION_TIMEOUT", 60*time.Second),
		RequestTimeout:    env.getDuration("REQUEST_TIMEOUT", 90*time.Second),
		MaxRequestBytes:   int64(env.getInt("MAX_REQUEST_BYTES", 1<<20)),

		RateLimitEnabled: env.getBool("RATE_LIMIT_ENABLED", true),
		RateLimit:        env.get("RATE_LIMIT", "60-M"),

		RabbitMQURL: env.get("RABBITMQ_URL", ""),

		OTELEnabled:  env.getBool("OTEL_ENABLED", false),
		OTELEndpoint: env.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (want memory, redis, postgres or sqlite)", c.StorageBackend)
	}

	if c.StorageBackend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("COMPLETION_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= c.CompletionTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must be longer than COMPLETION_TIMEOUT (%s)", c.RequestTimeout, c.CompletionTimeout)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be positive")
	}
	if c.OTELEnabled && c.OTELEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	return nil
}

type source func(string) string

func (s source) get(key, defaultValue string) string {
	if value := s(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getBool(key string, defaultValue bool) bool {
	if value := s(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (s source) getInt(key string, defaultValue int) int {
	if value := s(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or a bare number of seconds
func (s source) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := s(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func (s source) getList(key string, defaultValue []string) []string {
	value := s(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
