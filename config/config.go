package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Providers     ProvidersConfig
	Knowledge     KnowledgeConfig
	Retrieval     RetrievalConfig
	Session       SessionConfig
	Admin         AdminConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ProvidersConfig holds the remote model provider configurations
type ProvidersConfig struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig holds the embedding provider configuration
type EmbeddingConfig struct {
	URL      string
	Model    string
	Timeout  time.Duration
	MaxChars int
}

// LLMConfig holds the answer-generation provider configuration
type LLMConfig struct {
	URL         string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// KnowledgeConfig holds the knowledge-base file locations
type KnowledgeConfig struct {
	SourcePath     string
	CachePath      string
	UnansweredPath string
	StatsPath      string
	WatchEnabled   bool
}

// RetrievalConfig holds the retrieval filter and acceptance thresholds.
// StrictThreshold is the answer/defer gate and is stricter than MinScore,
// which only filters which chunks may appear in the context.
type RetrievalConfig struct {
	TopN            int
	MinWords        int
	MinScore        float64
	StrictThreshold float64
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	Expiration   time.Duration
	ReapInterval time.Duration
	HistoryLimit int
}

// AdminConfig holds the admin review API configuration
type AdminConfig struct {
	JWTSecret string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Providers: ProvidersConfig{
			Embedding: EmbeddingConfig{
				URL:      getEnv("EMBEDDING_API_URL", ""),
				Model:    getEnv("EMBEDDING_MODEL", "text-embedding-granite-embedding-278m-multilingual"),
				Timeout:  getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
				MaxChars: getEnvAsInt("EMBEDDING_MAX_CHARS", 4000),
			},
			LLM: LLMConfig{
				URL:         getEnv("LLM_API_URL", ""),
				Model:       getEnv("LLM_MODEL", "llama-3.1-8b-ultralong-1m-instruct"),
				Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
				MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 500),
				Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			},
		},
		Knowledge: KnowledgeConfig{
			SourcePath:     getEnv("KNOWLEDGE_PATH", "data/conocimiento.txt"),
			CachePath:      getEnv("KNOWLEDGE_CACHE_PATH", "data/base_conocimiento.json"),
			UnansweredPath: getEnv("UNANSWERED_PATH", "data/new_questions.json"),
			StatsPath:      getEnv("STATS_PATH", "data/stats.json"),
			WatchEnabled:   getEnvAsBool("KNOWLEDGE_WATCH", false),
		},
		Retrieval: RetrievalConfig{
			TopN:            getEnvAsInt("RETRIEVAL_TOP_N", 1),
			MinWords:        getEnvAsInt("RETRIEVAL_MIN_WORDS", 5),
			MinScore:        getEnvAsFloat("RETRIEVAL_MIN_SCORE", 0.65),
			StrictThreshold: getEnvAsFloat("RETRIEVAL_STRICT_THRESHOLD", 0.70),
		},
		Session: SessionConfig{
			Expiration:   getEnvAsDuration("SESSION_EXPIRATION", 30*time.Minute),
			ReapInterval: getEnvAsDuration("SESSION_REAP_INTERVAL", 5*time.Minute),
			HistoryLimit: getEnvAsInt("SESSION_HISTORY_LIMIT", 1),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Providers.Embedding.URL == "" {
		return fmt.Errorf("EMBEDDING_API_URL is required")
	}
	if c.Providers.LLM.URL == "" {
		return fmt.Errorf("LLM_API_URL is required")
	}
	if c.Knowledge.SourcePath == "" {
		return fmt.Errorf("knowledge source path is required")
	}
	if c.Retrieval.StrictThreshold < c.Retrieval.MinScore {
		return fmt.Errorf("strict threshold (%.2f) must not be below retrieval min score (%.2f)",
			c.Retrieval.StrictThreshold, c.Retrieval.MinScore)
	}
	if c.Session.Expiration <= 0 || c.Session.ReapInterval <= 0 {
		return fmt.Errorf("session expiration and reap interval must be positive")
	}
	if c.IsProduction() && c.Admin.JWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required in production")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3017)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 3017
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
