package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string

	SessionSigningKey string
	SessionIssuer     string
	SessionAudience   string
	SessionTTL        time.Duration
	// SessionStore selects the session backend: memory, redis or postgres.
	SessionStore string

	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Upload   UploadConfig
	Tracing  TracingConfig
	// RateLimits caps requests per window; zero disables a limit.
	RateLimits RateLimitConfig

	IdentityProviderURL string
	// IdentityCallbackSecret verifies tokens on the provider's verdict
	// webhook. Empty disables the webhook.
	IdentityCallbackSecret string
	IdentityCallbackIssuer string
	BcryptCost             int
}

// RedisConfig configures the go-redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the verification code notifier. An empty broker
// list selects the log notifier.
type KafkaConfig struct {
	Brokers     []string
	NotifyTopic string
}

// UploadConfig configures document content transfer.
type UploadConfig struct {
	// BaseURL of the content store. Empty keeps content in memory.
	BaseURL        string
	MaxConcurrency int
	MaxSizeBytes   int64
	MaxMemoryBytes int64
}

// RateLimitConfig bounds session starts per client IP and code resends per
// session. Limits are kept in redis when SessionStore is redis.
type RateLimitConfig struct {
	SessionStartLimit  int
	SessionStartWindow time.Duration
	CodeResendLimit    int
	CodeResendWindow   time.Duration
}

// TracingConfig selects the span exporter: none, stdout or otlp.
type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	SampleRate   float64
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	signingKey := os.Getenv("SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:              getEnv("ONBOARDING_ADDR", ":8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SessionSigningKey: signingKey,
		SessionIssuer:     getEnv("SESSION_ISSUER", "onboarding"),
		SessionAudience:   getEnv("SESSION_AUDIENCE", "onboarding-web"),
		SessionTTL:        getDuration("SESSION_TTL", 72*time.Hour),
		SessionStore:      getEnv("SESSION_STORE", "memory"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("KAFKA_BROKERS")),
			NotifyTopic: getEnv("KAFKA_NOTIFY_TOPIC", "onboarding.verification-codes"),
		},
		Upload: UploadConfig{
			BaseURL:        os.Getenv("UPLOAD_BASE_URL"),
			MaxConcurrency: getInt("UPLOAD_MAX_CONCURRENCY", 4),
			MaxSizeBytes:   getInt64("DOCUMENT_MAX_SIZE_BYTES", 10<<20),
			MaxMemoryBytes: getInt64("UPLOAD_MAX_MEMORY_BYTES", 8<<20),
		},
		RateLimits: RateLimitConfig{
			SessionStartLimit:  getInt("RATE_LIMIT_SESSION_START", 20),
			SessionStartWindow: getDuration("RATE_LIMIT_SESSION_START_WINDOW", time.Minute),
			CodeResendLimit:    getInt("RATE_LIMIT_CODE_RESEND", 5),
			CodeResendWindow:   getDuration("RATE_LIMIT_CODE_RESEND_WINDOW", 15*time.Minute),
		},
		Tracing: TracingConfig{
			Exporter:     getEnv("TRACE_EXPORTER", "none"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getFloat("TRACE_SAMPLE_RATE", 1.0),
		},
		IdentityProviderURL:    getEnv("IDENTITY_PROVIDER_URL", "https://idv.example.com/start"),
		IdentityCallbackSecret: os.Getenv("IDENTITY_CALLBACK_SECRET"),
		IdentityCallbackIssuer: getEnv("IDENTITY_CALLBACK_ISSUER", "identity-provider"),
		BcryptCost:             getInt("BCRYPT_COST", 12),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
