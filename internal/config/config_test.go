package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MaxChunkSize != 16777216 {
		t.Errorf("MaxChunkSize = %d, want 16MB", cfg.MaxChunkSize)
	}
	if cfg.SessionExpiryHours != 24 {
		t.Errorf("SessionExpiryHours = %d, want 24", cfg.SessionExpiryHours)
	}
	if len(cfg.AllowedExtensions) == 0 {
		t.Error("AllowedExtensions empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CHUNK_SIZE", "1048576")
	t.Setenv("ALLOWED_EXTENSIONS", ".MP4, .webm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.MaxChunkSize != 1048576 {
		t.Errorf("MaxChunkSize = %d, want 1MB", cfg.MaxChunkSize)
	}
	// Extensions are lowercased and trimmed.
	if len(cfg.AllowedExtensions) != 2 || cfg.AllowedExtensions[0] != ".mp4" || cfg.AllowedExtensions[1] != ".webm" {
		t.Errorf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"chunk exceeds upload", "MAX_CHUNK_SIZE", "99999999999999"},
		{"negative expiry", "SESSION_EXPIRY_HOURS", "-1"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"extension without dot", "ALLOWED_EXTENSIONS", "mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("SESSION_EXPIRY_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionExpiryHours != 24 {
		t.Errorf("SessionExpiryHours = %d, want default 24", cfg.SessionExpiryHours)
	}
}
