package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Vendor project backend.
	PlatformBaseURL string
	TrackingBaseURL string

	// Remote video renderer.
	RenderBaseURL  string
	RenderAPIKey   string
	RenderFunction string
	PollInterval   time.Duration
	PollMaxTries   int

	// Artifact storage. S3 is used when a bucket is configured, the local
	// filesystem store otherwise.
	S3Bucket        string
	S3Region        string
	S3AccessKeyID   string
	S3SecretKey     string
	StoragePath     string
	StorageBaseURL  string
	StorageRootPath string

	// Session key-value store. Postgres when DATABASE_URL is set, embedded
	// sqlite otherwise.
	DatabaseURL string
	KVPath      string

	FontPath string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		PlatformBaseURL:  os.Getenv("PLATFORM_BASE_URL"),
		TrackingBaseURL:  getEnv("TRACKING_BASE_URL", "https://pixpro.app/api"),
		RenderBaseURL:    os.Getenv("RENDER_BASE_URL"),
		RenderAPIKey:     os.Getenv("RENDER_API_KEY"),
		RenderFunction:   getEnv("RENDER_FUNCTION", "propmotion"),
		PollInterval:     time.Second * time.Duration(getEnvInt("RENDER_POLL_INTERVAL_SECONDS", 15)),
		PollMaxTries:     getEnvInt("RENDER_POLL_MAX_ATTEMPTS", 20),
		S3Bucket:         os.Getenv("AWS_S3_BUCKET_NAME"),
		S3Region:         os.Getenv("AWS_S3_REGION"),
		S3AccessKeyID:    os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		StorageRootPath:  getEnv("STORAGE_ROOT_PATH", "production/photos"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		KVPath:           getEnv("KV_PATH", "./evideo.db"),
		FontPath:         os.Getenv("FONT_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.PlatformBaseURL == "" {
		return nil, fmt.Errorf("PLATFORM_BASE_URL is required")
	}

	if cfg.RenderBaseURL == "" {
		return nil, fmt.Errorf("RENDER_BASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
