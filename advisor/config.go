package advisor

import (
	"os"
	"strconv"
	"time"
)

// Config holds the worker's runtime configuration.
type Config struct {
	ConfigPath       string // optional experiment YAML
	LLMMode          string // "openai" or "mock"
	Model            string
	BaseURL          string
	APIKey           string
	MaxRetries       int
	TransportRetries int
	PollTimeout      time.Duration
	TranscriptPath   string
	HTTPAddr         string
	QueueSize        int
	CacheSize        int
	CacheTTL         time.Duration
	RateLimitRPS     float64
	UsageDBPath      string
	LogLevel         string
	TracingEnabled   bool
	JaegerEndpoint   string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		ConfigPath:       getEnv("ADVISOR_CONFIG", ""),
		LLMMode:          getEnv("LLM_MODE", "mock"),
		Model:            getEnv("ADVISOR_MODEL", "Qwen/Qwen2.5-72B-Instruct"),
		BaseURL:          getEnv("ADVISOR_BASE_URL", ""),
		APIKey:           getEnv("ADVISOR_API_KEY", ""),
		MaxRetries:       getEnvInt("ADVISOR_MAX_RETRIES", 3),
		TransportRetries: getEnvInt("ADVISOR_TRANSPORT_RETRIES", 3),
		PollTimeout:      getEnvDuration("ADVISOR_POLL_TIMEOUT", "1s"),
		TranscriptPath:   getEnv("ADVISOR_TRANSCRIPT", "output.txt"),
		HTTPAddr:         getEnv("ADVISOR_HTTP_ADDR", ":8081"),
		QueueSize:        getEnvInt("ADVISOR_QUEUE_SIZE", 64),
		CacheSize:        getEnvInt("ADVISOR_CACHE_SIZE", 128),
		CacheTTL:         getEnvDuration("ADVISOR_CACHE_TTL", "10m"),
		RateLimitRPS:     getEnvFloat("ADVISOR_RATE_LIMIT_RPS", 0),
		UsageDBPath:      getEnv("ADVISOR_USAGE_DB", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TracingEnabled:   getEnv("TRACING_ENABLED", "false") == "true",
		JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
