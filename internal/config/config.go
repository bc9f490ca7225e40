package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Selection  SelectionConfig
	Classifier ClassifierConfig
	OpenAI     OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds retrieval-related configuration
type SearchConfig struct {
	CandidatePoolSize int // top-K fetched from the vector index per search
	HistoryWindow     int // conversation turns passed to intent routing
	MaxResults        int // hard cap on recommendations returned
}

// SelectionConfig holds the perfect-match policy thresholds. These are
// tunable policy parameters, not structural constants.
type SelectionConfig struct {
	PerfectScore float64 // leader similarity floor
	PerfectGap   float64 // required lead over the runner-up
}

// ClassifierConfig holds title-classification configuration
type ClassifierConfig struct {
	Workers   int // bounded concurrency for per-candidate classification
	CacheSize int // LRU entries of classified titles
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int // text vector width produced by the embedder
	ImagePadDimensions  int // zero-pad suffix matching the index's image block
	Timeout             int
	Enabled             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "furniture_catalog"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			CandidatePoolSize: getEnvAsInt("SEARCH_CANDIDATE_POOL", 20),
			HistoryWindow:     getEnvAsInt("SEARCH_HISTORY_WINDOW", 6),
			MaxResults:        getEnvAsInt("SEARCH_MAX_RESULTS", 3),
		},
		Selection: SelectionConfig{
			PerfectScore: getEnvAsFloat("SELECT_PERFECT_SCORE", 0.90),
			PerfectGap:   getEnvAsFloat("SELECT_PERFECT_GAP", 0.05),
		},
		Classifier: ClassifierConfig{
			Workers:   getEnvAsInt("CLASSIFIER_WORKERS", 4),
			CacheSize: getEnvAsInt("CLASSIFIER_CACHE_SIZE", 512),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.groq.com/openai/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "llama-3.1-8b-instant"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 500),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "all-minilm-l6-v2"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 384),
			ImagePadDimensions:  getEnvAsInt("INDEX_IMAGE_PAD_DIMENSIONS", 768),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// IndexDimensions returns the combined (text+image) width of the vector
// index that query vectors must match.
func (c *Config) IndexDimensions() int {
	return c.OpenAI.EmbeddingDimensions + c.OpenAI.ImagePadDimensions
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
