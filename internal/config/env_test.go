package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CIRCUS_TEST_KEY", "value")
	if got := GetEnv("CIRCUS_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("GetEnv = %q, want %q", got, "value")
	}
	if got := GetEnv("CIRCUS_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("GetEnv missing = %q, want %q", got, "fallback")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CIRCUS_TEST_PORT", "2222")
	got, err := GetEnvInt("CIRCUS_TEST_PORT", 1)
	if err != nil || got != 2222 {
		t.Fatalf("GetEnvInt = %d, %v, want 2222, nil", got, err)
	}

	t.Setenv("CIRCUS_TEST_PORT", "abc")
	got, err = GetEnvInt("CIRCUS_TEST_PORT", 1)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if got != 1 {
		t.Fatalf("GetEnvInt on error = %d, want fallback 1", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CIRCUS_DOTENV_A=from-file\nCIRCUS_DOTENV_B=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("CIRCUS_DOTENV_B", "from-env")
	// Registers cleanup for the key the file will set.
	t.Setenv("CIRCUS_DOTENV_A", "")
	os.Unsetenv("CIRCUS_DOTENV_A")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CIRCUS_DOTENV_A"); got != "from-file" {
		t.Fatalf("A = %q, want from-file", got)
	}
	if got := os.Getenv("CIRCUS_DOTENV_B"); got != "from-env" {
		t.Fatalf("B = %q, want existing env to win", got)
	}
}

func TestNewLoggerToHonorsLevel(t *testing.T) {
	t.Setenv("CIRCUS_LOG_LEVEL", "warn")
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "test")

	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "test") {
		t.Fatalf("warn line missing message or prefix: %q", out)
	}
}
