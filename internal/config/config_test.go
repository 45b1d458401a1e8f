package config

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TRYON_BASE_URL", "LOG_LEVEL", "DEBUG", "PREFER_IPV4", "HTTP_TIMEOUT_SECONDS",
		"WEB_ADDR", "SESSION_TTL_MINUTES", "MAX_UPLOAD_MB", "TELEGRAM_BOT_TOKEN",
		"MAX_CONCURRENT", "MEDIA_GROUP_DEBOUNCE_MS", "TELEGRAM_HTTP_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TryOnBaseURL != "http://localhost:8000" {
		t.Fatalf("TryOnBaseURL = %q, want %q", cfg.TryOnBaseURL, "http://localhost:8000")
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("HTTPTimeout = %s, want no timeout", cfg.HTTPTimeout)
	}
	if cfg.WebAddr != ":8080" {
		t.Fatalf("WebAddr = %q", cfg.WebAddr)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if !cfg.PreferIPv4 {
		t.Fatalf("PreferIPv4 should default to true")
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRYON_BASE_URL", "https://tryon.example.com/ ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TryOnBaseURL != "https://tryon.example.com" {
		t.Fatalf("TryOnBaseURL = %q", cfg.TryOnBaseURL)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "no scheme", value: "tryon.example.com"},
		{name: "ftp scheme", value: "ftp://tryon.example.com"},
		{name: "no host", value: "http://"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TRYON_BASE_URL", tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %q", tc.value)
			}
		})
	}
}

func TestLoadClampsInvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-5")
	t.Setenv("MAX_UPLOAD_MB", "nope")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxConcurrent != 1 {
		t.Fatalf("MaxConcurrent = %d, want 1", cfg.MaxConcurrent)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("HTTPTimeout = %s, want 0", cfg.HTTPTimeout)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadBotRequiresToken(t *testing.T) {
	clearEnv(t)
	if _, err := LoadBot(); err == nil {
		t.Fatalf("LoadBot should fail without TELEGRAM_BOT_TOKEN")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot returned error: %v", err)
	}
	if cfg.TelegramToken != "123:abc" {
		t.Fatalf("TelegramToken = %q", cfg.TelegramToken)
	}
}

func TestNewLoggerToLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLoggerTo(&buf, Config{LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("unexpected log output: %s", out)
	}

	buf.Reset()
	NewLoggerTo(&buf, Config{LogLevel: "warn", Debug: true}).Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Fatalf("DEBUG did not lower the level")
	}
}

func TestTelegramTimeoutIsAlwaysBounded(t *testing.T) {
	clearEnv(t)
	for _, raw := range []string{"", "0", "-5", "nope"} {
		t.Setenv("TELEGRAM_HTTP_TIMEOUT_SECONDS", raw)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.TelegramHTTPTimeout != 180*time.Second {
			t.Fatalf("TELEGRAM_HTTP_TIMEOUT_SECONDS=%q gave %s, want 180s", raw, cfg.TelegramHTTPTimeout)
		}
	}

	t.Setenv("TELEGRAM_HTTP_TIMEOUT_SECONDS", "90")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramHTTPTimeout != 90*time.Second {
		t.Fatalf("TelegramHTTPTimeout = %s", cfg.TelegramHTTPTimeout)
	}
}
