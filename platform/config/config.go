// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int32
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MapboxConfig provides credentials for the Mapbox Search Box API.
type MapboxConfig interface {
	GetMapboxAccessToken() string
	GetMapboxBaseURL() string
	IsMapboxEnabled() bool
}

// StoreFinderConfig provides tuning for the store lookup pipeline.
type StoreFinderConfig interface {
	MapboxConfig
	GetStoreFinderRegion() string
	GetStoreFinderLimit() int
	GetStoreFinderConcurrency() int
	GetStoreFinderTimeout() time.Duration
	GetStoreFinderCacheTTL() time.Duration
}

// GeminiConfig provides settings for the Gemini model backend.
type GeminiConfig interface {
	GetGoogleAPIKey() string
	GetGeminiModel() string
	GetGeminiEmbeddingModel() string
	IsGeminiEnabled() bool
}

// AssistantConfig provides identity defaults for the assistant runtime.
type AssistantConfig interface {
	GetAssistantAppName() string
	GetAssistantUserID() string
	GetAssistantSessionID() string
}

// QdrantConfig provides settings for Qdrant vector database.
type QdrantConfig interface {
	GetQdrantURL() string
	GetQdrantAPIKey() string
	GetQdrantCollection() string
	IsQdrantEnabled() bool
}

// EmbeddingConfig provides settings for the embedding API service.
type EmbeddingConfig interface {
	GetEmbeddingAPIURL() string
	GetEmbeddingAPIKey() string
	IsEmbeddingEnabled() bool
}

// RedisConfig provides the shared Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	DatabaseMaxConns       int32
	JWTAccessSecret        string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	MapboxAccessToken      string
	MapboxBaseURL          string
	StoreFinderRegion      string
	StoreFinderLimit       int
	StoreFinderConcurrency int
	StoreFinderTimeout     time.Duration
	StoreFinderCacheTTL    time.Duration
	GoogleAPIKey           string
	GeminiModel            string
	GeminiEmbeddingModel   string
	AssistantAppName       string
	AssistantUserID        string
	AssistantSessionID     string
	QdrantURL              string
	QdrantAPIKey           string
	QdrantCollection       string
	EmbeddingAPIURL        string
	EmbeddingAPIKey        string
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int32 { return c.DatabaseMaxConns }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MapboxConfig implementation
func (c *Config) GetMapboxAccessToken() string { return c.MapboxAccessToken }
func (c *Config) GetMapboxBaseURL() string     { return c.MapboxBaseURL }
func (c *Config) IsMapboxEnabled() bool        { return c.MapboxAccessToken != "" }

// StoreFinderConfig implementation
func (c *Config) GetStoreFinderRegion() string          { return c.StoreFinderRegion }
func (c *Config) GetStoreFinderLimit() int              { return c.StoreFinderLimit }
func (c *Config) GetStoreFinderConcurrency() int        { return c.StoreFinderConcurrency }
func (c *Config) GetStoreFinderTimeout() time.Duration  { return c.StoreFinderTimeout }
func (c *Config) GetStoreFinderCacheTTL() time.Duration { return c.StoreFinderCacheTTL }

// GeminiConfig implementation
func (c *Config) GetGoogleAPIKey() string         { return c.GoogleAPIKey }
func (c *Config) GetGeminiModel() string          { return c.GeminiModel }
func (c *Config) GetGeminiEmbeddingModel() string { return c.GeminiEmbeddingModel }
func (c *Config) IsGeminiEnabled() bool           { return c.GoogleAPIKey != "" }

// AssistantConfig implementation
func (c *Config) GetAssistantAppName() string   { return c.AssistantAppName }
func (c *Config) GetAssistantUserID() string    { return c.AssistantUserID }
func (c *Config) GetAssistantSessionID() string { return c.AssistantSessionID }

// QdrantConfig implementation
func (c *Config) GetQdrantURL() string        { return c.QdrantURL }
func (c *Config) GetQdrantAPIKey() string     { return c.QdrantAPIKey }
func (c *Config) GetQdrantCollection() string { return c.QdrantCollection }
func (c *Config) IsQdrantEnabled() bool {
	return c.QdrantURL != "" && c.QdrantCollection != ""
}

// EmbeddingConfig implementation
func (c *Config) GetEmbeddingAPIURL() string { return c.EmbeddingAPIURL }
func (c *Config) GetEmbeddingAPIKey() string { return c.EmbeddingAPIKey }
func (c *Config) IsEmbeddingEnabled() bool   { return c.EmbeddingAPIURL != "" }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
// Required keys are checked by the binaries through Require* helpers so the
// terminal tools can run without a database.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:       int32(mustInt(getEnv("DATABASE_MAX_CONNS", "10"))),
		JWTAccessSecret:        getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MapboxAccessToken:      getEnv("MAPBOX_ACCESS_TOKEN", ""),
		MapboxBaseURL:          strings.TrimRight(getEnv("MAPBOX_BASE_URL", "https://api.mapbox.com"), "/"),
		StoreFinderRegion:      strings.ToUpper(strings.TrimSpace(getEnv("STORE_FINDER_REGION", "KW"))),
		StoreFinderLimit:       mustInt(getEnv("STORE_FINDER_LIMIT", "10")),
		StoreFinderConcurrency: mustInt(getEnv("STORE_FINDER_CONCURRENCY", "5")),
		StoreFinderTimeout:     mustDuration(getEnv("STORE_FINDER_TIMEOUT", "10s")),
		StoreFinderCacheTTL:    mustDuration(getEnv("STORE_FINDER_CACHE_TTL", "10m")),
		GoogleAPIKey:           getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEmbeddingModel:   getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		AssistantAppName:       getEnv("ASSISTANT_APP_NAME", "meal_planner"),
		AssistantUserID:        getEnv("ASSISTANT_USER_ID", "user"),
		AssistantSessionID:     getEnv("ASSISTANT_SESSION_ID", ""),
		QdrantURL:              getEnv("QDRANT_URL", ""),
		QdrantAPIKey:           getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:       getEnv("QDRANT_COLLECTION", "meal_planner_memory"),
		EmbeddingAPIURL:        getEnv("EMBEDDING_API_URL", ""),
		EmbeddingAPIKey:        getEnv("EMBEDDING_API_KEY", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if cfg.StoreFinderLimit < 1 {
		return nil, fmt.Errorf("STORE_FINDER_LIMIT must be a positive integer")
	}
	if cfg.StoreFinderConcurrency < 1 {
		return nil, fmt.Errorf("STORE_FINDER_CONCURRENCY must be a positive integer")
	}
	if cfg.StoreFinderTimeout <= 0 {
		return nil, fmt.Errorf("STORE_FINDER_TIMEOUT must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// RequireServer validates the keys needed by the HTTP API.
func (c *Config) RequireServer() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}

// RequireDatabase validates that a database URL is present.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// RequireMapbox validates that the Mapbox token is present.
func (c *Config) RequireMapbox() error {
	if c.MapboxAccessToken == "" {
		return fmt.Errorf("MAPBOX_ACCESS_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
