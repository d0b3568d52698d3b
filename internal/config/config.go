package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage backends for frames referenced by URL.
const (
	StorageHTTP  = "http"
	StorageAzure = "azure"
	StorageLocal = "local"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	FrameFetchTimeout  time.Duration
	MaxRequestBodySize int64

	FrameStorage        string
	AzureStorageAccount string
	AzureStorageKey     string
	LocalFrameDir       string

	BatchWorkers int
	MaxBatchSize int
	AllowedHosts []string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		FrameFetchTimeout:  parseDurationOrDefault("FRAME_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB, a 4K luma plane fits twice

		FrameStorage:        strings.ToLower(getEnvOrDefault("FRAME_STORAGE", StorageHTTP)),
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
		LocalFrameDir:       getEnvOrDefault("LOCAL_FRAME_DIR", "./frames"),

		BatchWorkers: int(parseIntOrDefault("BATCH_WORKERS", 4)),
		MaxBatchSize: int(parseIntOrDefault("MAX_BATCH_SIZE", 32)),
		AllowedHosts: parseList(os.Getenv("ALLOWED_FRAME_HOSTS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used to start the server.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.FrameFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			c.RequestTimeout, c.FrameFetchTimeout)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be >= 1 (got %d)", c.BatchWorkers)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("MAX_BATCH_SIZE must be >= 1 (got %d)", c.MaxBatchSize)
	}

	switch c.FrameStorage {
	case StorageHTTP:
	case StorageAzure:
		if c.AzureStorageAccount == "" || c.AzureStorageKey == "" {
			return fmt.Errorf("FRAME_STORAGE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	case StorageLocal:
		if strings.TrimSpace(c.LocalFrameDir) == "" {
			return fmt.Errorf("FRAME_STORAGE=local requires LOCAL_FRAME_DIR")
		}
		c.LocalFrameDir = filepath.Clean(c.LocalFrameDir)
	default:
		return fmt.Errorf("invalid FRAME_STORAGE: %q (want http, azure or local)", c.FrameStorage)
	}
	return nil
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

func parseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
