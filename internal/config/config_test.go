package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected default addr %q", cfg.App.Addr())
	}
	if cfg.App.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected default timeout %v", cfg.App.RequestTimeout())
	}
	if cfg.Redis.EventChannel != "ticket-events" {
		t.Fatalf("unexpected default event channel %q", cfg.Redis.EventChannel)
	}
	if !cfg.Postgres.RunMigrations {
		t.Fatal("migrations must default to enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_EVENT_CHANNEL", "workflow-events")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "120")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Addr() != "127.0.0.1:9090" {
		t.Fatalf("override ignored: %q", cfg.App.Addr())
	}
	if cfg.Redis.DB != 3 || cfg.Redis.EventChannel != "workflow-events" {
		t.Fatalf("redis overrides ignored: %+v", cfg.Redis)
	}
	if cfg.Auth.AccessTokenTTLMinutes != 120 {
		t.Fatalf("auth override ignored: %d", cfg.Auth.AccessTokenTTLMinutes)
	}
	if cfg.Postgres.RunMigrations {
		t.Fatal("migrations override ignored")
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid REDIS_DB")
	}
}
