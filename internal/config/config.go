package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Port                   string
	DBPath                 string
	VideoDir               string   // Root directory for published video artifacts
	MaxUploadSize          int64    // Maximum declared size of a full upload
	MaxChunkSize           int64    // Maximum size of a single chunk
	SessionExpiryHours     int      // Abandoned sessions older than this are reaped
	CleanupIntervalMinutes int      // How often the reaper sweeps
	AllowedExtensions      []string // Video extensions accepted for upload
	PublicURL              string   // Optional: Override auto-detected URL for reverse proxy setups
	LogLevel               string   // debug, info, warn, error
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	defaultExtensions := ".mp4,.webm,.mov,.mkv,.avi,.m4v,.ts"

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		DBPath:                 getEnv("DB_PATH", "./streaming.db"),
		VideoDir:               getEnv("VIDEO_DIR", "./videos"),
		MaxUploadSize:          getEnvInt64("MAX_UPLOAD_SIZE", 10737418240), // 10GB default
		MaxChunkSize:           getEnvInt64("MAX_CHUNK_SIZE", 16777216),     // 16MB default
		SessionExpiryHours:     getEnvInt("SESSION_EXPIRY_HOURS", 24),
		CleanupIntervalMinutes: getEnvInt("CLEANUP_INTERVAL_MINUTES", 60),
		AllowedExtensions:      getEnvList("ALLOWED_EXTENSIONS", defaultExtensions),
		PublicURL:              getEnv("PUBLIC_URL", ""), // Optional
		LogLevel:               getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate ensures configuration values are sensible
func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}

	if c.VideoDir == "" {
		return fmt.Errorf("VIDEO_DIR cannot be empty")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}

	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("MAX_CHUNK_SIZE must be positive, got %d", c.MaxChunkSize)
	}

	if c.MaxChunkSize > c.MaxUploadSize {
		return fmt.Errorf("MAX_CHUNK_SIZE (%d) cannot exceed MAX_UPLOAD_SIZE (%d)", c.MaxChunkSize, c.MaxUploadSize)
	}

	if c.SessionExpiryHours <= 0 {
		return fmt.Errorf("SESSION_EXPIRY_HOURS must be positive, got %d", c.SessionExpiryHours)
	}

	if c.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL_MINUTES must be positive, got %d", c.CleanupIntervalMinutes)
	}

	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS cannot be empty")
	}
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("ALLOWED_EXTENSIONS entries must start with a dot, got %q", ext)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an int64 environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated list from environment variable
func getEnvList(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
