package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration.
// It is populated from environment variables (optionally loaded from .env).
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Cache     CacheConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	Name           string
	Environment    string // development, staging, production
	Port           string
	Version        string
	PublicURL      string   // frontend base used for share links
	TrustedProxies []string // nil trusts no proxy headers
}

type DatabaseConfig struct {
	Driver string // memory, postgres
}

type RedisConfig struct {
	Host     string // empty disables Redis
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // base URL for object links, defaults to the endpoint
}

// UploadConfig drives POST /api/upload and the place/avatar image uploads.
type UploadConfig struct {
	Storage          string // disk, minio
	Path             string
	CDNURL           string
	MaxSize          int64
	AllowedTypes     []string // bare subtypes: jpeg, png, ...
	ServeStatic      bool
	PlaceImageMax    int64
	PlaceImageFormat []string // extensions with leading dot
}

// RateLimitConfig is a fixed window per client IP.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

type CORSConfig struct {
	Origins []string
}

type CacheConfig struct {
	PlacesTTL   time.Duration
	MemoryItems int
}

// WorkerConfig drives cmd/worker.
type WorkerConfig struct {
	Concurrency int
	HealthPort  string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Roomtour API"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "3000"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			PublicURL:      strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:5173"), "/"),
			TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "memory"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "roomtour"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Upload: UploadConfig{
			Storage:          getEnv("UPLOAD_STORAGE", "disk"),
			Path:             getEnv("UPLOAD_PATH", "./uploads"),
			CDNURL:           strings.TrimRight(getEnv("CDN_URL", "http://localhost:3000/uploads"), "/"),
			MaxSize:          getEnvInt64("UPLOAD_MAX_SIZE", 5*1024*1024),
			AllowedTypes:     getEnvList("ALLOWED_FILE_TYPES", []string{"jpeg", "jpg", "png", "webp"}),
			ServeStatic:      getEnvBool("UPLOAD_SERVE_STATIC", true),
			PlaceImageMax:    getEnvInt64("PLACE_IMAGE_MAX_SIZE", 10*1024*1024),
			PlaceImageFormat: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		},
		RateLimit: RateLimitConfig{
			Window:      time.Duration(getEnvInt64("RATE_LIMIT_WINDOW", 15*60*1000)) * time.Millisecond,
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		CORS: CORSConfig{
			Origins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Cache: CacheConfig{
			PlacesTTL:   getEnvDuration("CACHE_TTL_PLACES", 5*time.Minute),
			MemoryItems: getEnvInt("CACHE_MEMORY_ITEMS", 10000),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and production requirements.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be memory or postgres, got %q", c.Database.Driver)
	}

	switch c.Upload.Storage {
	case "disk", "minio":
	default:
		return fmt.Errorf("UPLOAD_STORAGE must be disk or minio, got %q", c.Upload.Storage)
	}

	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("ALLOWED_FILE_TYPES must not be empty")
	}
	if c.RateLimit.Window <= 0 || c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive")
	}

	if c.App.Environment == "production" {
		if c.Database.Driver == "memory" {
			return fmt.Errorf("DB_DRIVER=memory is not allowed in production")
		}
		for _, origin := range c.CORS.Origins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
			}
		}
	}

	return nil
}

// AllowedMIMETypes maps ALLOWED_FILE_TYPES entries to image/<type>.
func (u UploadConfig) AllowedMIMETypes() []string {
	out := make([]string, 0, len(u.AllowedTypes))
	for _, t := range u.AllowedTypes {
		out = append(out, "image/"+t)
	}
	return out
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
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

// getEnvList splits a comma-separated value, trimming blanks.
func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
