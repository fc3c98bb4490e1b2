package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"vitrine/internal/ai"
	"vitrine/internal/ai/gemini"
	"vitrine/internal/ai/gpt"
	"vitrine/internal/db"
	"vitrine/internal/services"
	"vitrine/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the process configuration read from the environment
type Config struct {
	Env         string
	Port        string
	SeedCatalog bool

	AIProvider    string
	Gemini        gemini.Config
	OpenAI        gpt.Config
	AIRetry       ai.RetryPolicy
	MediaMaxBytes int64

	Database  db.Config
	Storage   services.StorageConfig
	Telemetry telemetry.Config
}

// LoadConfig reads the configuration from the environment
func LoadConfig() Config {
	return Config{
		Env:         getEnv("ENV", "production"),
		Port:        getEnv("PORT", "8080"),
		SeedCatalog: getEnvBool("SEED_CATALOG", false),

		AIProvider: strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		Gemini: gemini.Config{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			TextModel:  os.Getenv("GEMINI_TEXT_MODEL"),
			ImageModel: os.Getenv("GEMINI_IMAGE_MODEL"),
			BaseURL:    os.Getenv("GEMINI_BASE_URL"),
		},
		OpenAI: gpt.Config{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			TextModel:  os.Getenv("OPENAI_TEXT_MODEL"),
			ImageModel: os.Getenv("OPENAI_IMAGE_MODEL"),
			BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		},
		AIRetry: ai.RetryPolicy{
			MaxRetries:      getEnvInt("AI_MAX_RETRIES", 2),
			InitialInterval: 500 * time.Millisecond,
			Timeout:         getEnvDuration("AI_TIMEOUT", 60*time.Second),
		},
		MediaMaxBytes: int64(getEnvInt("MEDIA_MAX_BYTES", int(ai.DefaultMediaMaxBytes))),

		Database: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "vitrine"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		Storage: services.StorageConfig{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        getEnv("S3_REGION", "us-east-1"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        os.Getenv("S3_BUCKET"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_URL"),
			DisableSSL:    getEnvBool("S3_DISABLE_SSL", false),
		},
		Telemetry: telemetry.Config{
			Enabled:        getEnvBool("ENABLE_TELEMETRY", false),
			Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:       getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "vitrine-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		},
	}
}

// IsDevelopment reports whether the process runs in development mode
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AIEnabled reports whether the selected provider has a credential
func (c Config) AIEnabled() bool {
	switch c.AIProvider {
	case ProviderOpenAI:
		return c.OpenAI.APIKey != ""
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	default:
		return false
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid boolean in environment, using default")
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer in environment, using default")
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration in environment, using default")
		return defaultValue
	}
	return d
}
