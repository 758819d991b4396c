package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Pipeline
	TargetYear     int
	MaxUploadBytes int64

	// Anthropic (chat assistant)
	AnthropicAPIKey  string
	AnthropicBaseURL string
	ChatModel        string
	ChatMaxTokens    int

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TargetYear:     getEnvInt("TARGET_YEAR", 2025),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		ChatModel:        getEnv("CHAT_MODEL", "claude-3-5-sonnet-latest"),
		ChatMaxTokens:    getEnvInt("CHAT_MAX_TOKENS", 1024),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 60*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// HasAnthropicKey reports whether any credential is set at all.
func (c *Config) HasAnthropicKey() bool {
	return c.AnthropicAPIKey != ""
}

// AnthropicKeyPlausible reports whether the configured key is
// syntactically usable. It gates only the chat collaborator, never the
// analysis pipeline.
func (c *Config) AnthropicKeyPlausible() bool {
	return KeyPlausible(c.AnthropicAPIKey)
}

// KeyPlausible checks one raw credential value: non-empty, unquoted,
// provider prefix, minimum length, no whitespace.
func KeyPlausible(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	quoted := (strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`)) ||
		(strings.HasPrefix(trimmed, `'`) && strings.HasSuffix(trimmed, `'`))
	if quoted {
		return false
	}
	if !strings.HasPrefix(trimmed, "sk-ant-") || len(trimmed) < 20 {
		return false
	}
	return !strings.ContainsAny(trimmed, " \t\n\r")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
