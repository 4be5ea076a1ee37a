package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("SESSION_HARD_RESET_AFTER", "")
	t.Setenv("SESSION_INACTIVITY_AFTER", "")
	t.Setenv("EVENTS_BACKEND", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Fatalf("expected memory session backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionHardResetAfter != 24*time.Hour {
		t.Fatalf("expected 24h hard reset, got %s", cfg.SessionHardResetAfter)
	}
	if cfg.SessionInactivityAfter != 15*time.Minute {
		t.Fatalf("expected 15m inactivity, got %s", cfg.SessionInactivityAfter)
	}
	if cfg.CollaboratorTimeout != 5*time.Second {
		t.Fatalf("expected 5s collaborator timeout, got %s", cfg.CollaboratorTimeout)
	}
	if cfg.EventsBackend != EventsBackendNone {
		t.Fatalf("expected events disabled by default, got %s", cfg.EventsBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_BACKEND", " Redis ")
	t.Setenv("SESSION_INACTIVITY_AFTER", "5m")
	t.Setenv("COLLABORATOR_TIMEOUT", "1500ms")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("EVENTS_BACKEND", "NATS")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Fatalf("expected redis backend, got %q", cfg.SessionBackend)
	}
	if cfg.SessionInactivityAfter != 5*time.Minute {
		t.Fatalf("expected inactivity override, got %s", cfg.SessionInactivityAfter)
	}
	if cfg.CollaboratorTimeout != 1500*time.Millisecond {
		t.Fatalf("expected collaborator timeout override, got %s", cfg.CollaboratorTimeout)
	}
	if cfg.WorkerCount != 8 {
		t.Fatalf("expected worker count override, got %d", cfg.WorkerCount)
	}
	if cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue disabled")
	}
	if cfg.EventsBackend != EventsBackendNATS {
		t.Fatalf("expected nats events backend, got %s", cfg.EventsBackend)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("SESSION_HARD_RESET_AFTER", "a day")
	cfg := Load()
	if cfg.WorkerCount != 2 {
		t.Fatalf("expected default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.SessionHardResetAfter != 24*time.Hour {
		t.Fatalf("expected default hard reset, got %s", cfg.SessionHardResetAfter)
	}
}

func TestLoadTransportSettings(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://homes.example.in, ,https://app.example.in")
	t.Setenv("PUBLIC_RATE_LIMIT_RPS", "0.5")
	t.Setenv("PUBLIC_RATE_BURST", "")
	t.Setenv("ASYNC_MESSAGING", "false")
	t.Setenv("ARCHIVE_REDACT_PII", "true")
	cfg := Load()
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://app.example.in" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.PublicRateLimitRPS != 0.5 {
		t.Fatalf("expected 0.5 rps, got %v", cfg.PublicRateLimitRPS)
	}
	if cfg.PublicRateBurst != 10 {
		t.Fatalf("expected default burst, got %d", cfg.PublicRateBurst)
	}
	if cfg.AsyncMessaging {
		t.Fatal("expected async messaging disabled")
	}
	if !cfg.ArchiveRedactPII {
		t.Fatal("expected pii redaction enabled")
	}
}
