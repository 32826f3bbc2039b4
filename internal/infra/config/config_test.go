package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.App.Port)
	}
	if cfg.Gate.Store != "memory" {
		t.Fatalf("expected default store memory, got %q", cfg.Gate.Store)
	}
	if cfg.Gate.BaseDelay != time.Second {
		t.Fatalf("expected base delay 1s, got %v", cfg.Gate.BaseDelay)
	}
	if cfg.Gate.MaxDelay != 30*time.Second {
		t.Fatalf("expected max delay 30s, got %v", cfg.Gate.MaxDelay)
	}
	if cfg.Gate.Window != 15*time.Minute {
		t.Fatalf("expected window 15m, got %v", cfg.Gate.Window)
	}
	if cfg.Gate.LockoutDuration != 15*time.Minute {
		t.Fatalf("expected lockout duration 15m, got %v", cfg.Gate.LockoutDuration)
	}
	if cfg.Gate.LoginMaxAttempts != 5 || cfg.Gate.PasswordResetMaxAttempts != 3 || cfg.Gate.SecurityQuestionMaxAttempts != 5 {
		t.Fatalf("unexpected default thresholds %+v", cfg.Gate)
	}
	if cfg.Gate.RetentionHorizon != 24*time.Hour {
		t.Fatalf("expected retention 24h, got %v", cfg.Gate.RetentionHorizon)
	}
	if cfg.Gate.JanitorInterval != time.Hour {
		t.Fatalf("expected janitor interval 1h, got %v", cfg.Gate.JanitorInterval)
	}
	if cfg.CSRF.Scheme != "timestamp" {
		t.Fatalf("expected default csrf scheme timestamp, got %q", cfg.CSRF.Scheme)
	}
	if cfg.CSRF.MaxAge != time.Hour {
		t.Fatalf("expected csrf max age 1h, got %v", cfg.CSRF.MaxAge)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CT_GATE_STORE", "redis")
	t.Setenv("CT_GATE_LOGIN_MAX_ATTEMPTS", "7")
	t.Setenv("CT_GATE_BASE_DELAY", "500ms")
	t.Setenv("CT_APP_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Gate.Store != "redis" {
		t.Fatalf("expected store redis, got %q", cfg.Gate.Store)
	}
	if cfg.Gate.LoginMaxAttempts != 7 {
		t.Fatalf("expected login threshold 7, got %d", cfg.Gate.LoginMaxAttempts)
	}
	if cfg.Gate.BaseDelay != 500*time.Millisecond {
		t.Fatalf("expected base delay 500ms, got %v", cfg.Gate.BaseDelay)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.App.Port)
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("CT_GATE_STORE", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestLoadRejectsHMACWithoutSecret(t *testing.T) {
	t.Setenv("CT_CSRF_SCHEME", "hmac")
	t.Setenv("CT_CSRF_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for hmac scheme without secret")
	}
}

func TestLoadAcceptsHMACWithSecret(t *testing.T) {
	t.Setenv("CT_CSRF_SCHEME", "hmac")
	t.Setenv("CT_CSRF_SECRET", "super-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CSRF.Scheme != "hmac" || cfg.CSRF.Secret != "super-secret" {
		t.Fatalf("unexpected csrf settings %+v", cfg.CSRF)
	}
}
