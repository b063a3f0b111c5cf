package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	MaxUploadSize  int64

	// Extraction tier settings. Each networked tier gets one timeout; a
	// timeout counts as TierUnavailable and the chain moves on.
	TierTimeout      time.Duration
	RemoteOCRBaseURL string
	RemoteOCRModel   string
	RemoteOCRAPIKey  string
	CatalogBaseURL   string
	CatalogSearchURL string
	OCRLanguage      string

	// Persistence
	DatabasePath string

	// Explanation service (optional; empty key disables it)
	ExplainBaseURL string
	ExplainModel   string
	ExplainAPIKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:           getEnvOrDefault("HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		MaxUploadSize:  parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB

		TierTimeout:      parseDurationOrDefault("TIER_TIMEOUT", 30*time.Second),
		RemoteOCRBaseURL: getEnvOrDefault("REMOTE_OCR_BASE_URL", "https://api-inference.huggingface.co/models"),
		RemoteOCRModel:   getEnvOrDefault("REMOTE_OCR_MODEL", "microsoft/trocr-small-printed"),
		RemoteOCRAPIKey:  os.Getenv("HUGGINGFACE_API_KEY"),
		CatalogBaseURL:   getEnvOrDefault("CATALOG_BASE_URL", "https://world.openfoodfacts.org/api/v0/product"),
		CatalogSearchURL: getEnvOrDefault("CATALOG_SEARCH_URL", "https://world.openfoodfacts.org/cgi/search.pl"),
		OCRLanguage:      getEnvOrDefault("OCR_LANGUAGE", "eng"),

		DatabasePath: getEnvOrDefault("DATABASE_PATH", "nutrition-scanner.db"),

		ExplainBaseURL: getEnvOrDefault("EXPLAIN_BASE_URL", "https://openrouter.ai/api/v1"),
		ExplainModel:   getEnvOrDefault("EXPLAIN_MODEL", "deepseek/deepseek-r1"),
		ExplainAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.TierTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, tier=%s)",
			cfg.RequestTimeout, cfg.TierTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
