package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != "sqlite3" || cfg.Database.Path != "bank.db" {
		t.Errorf("Unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Database.AtomicMaxAttempts != 5 {
		t.Errorf("Expected 5 atomic attempts, got %d", cfg.Database.AtomicMaxAttempts)
	}
	if cfg.Server.APIPrefix != "/api/v1" {
		t.Errorf("Expected /api/v1 prefix, got %s", cfg.Server.APIPrefix)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("Expected 30m token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log defaults: %+v", cfg.Log)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Unexpected allowed origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://bank@localhost/bank?sslmode=disable")
	t.Setenv("DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("HTTP_ADDRESS", "127.0.0.1:9000")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("SECRET_KEY", "shh")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://bank.example.com, ,https://app.example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.URL == "" {
		t.Errorf("Expected postgres settings, got %+v", cfg.Database)
	}
	if cfg.Database.BusyTimeout != 250*time.Millisecond {
		t.Errorf("Expected 250ms busy timeout, got %v", cfg.Database.BusyTimeout)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected invalid int to fall back to 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Expected address override, got %s", cfg.Server.Address)
	}
	if cfg.Auth.TokenTTL != 5*time.Minute || cfg.Auth.SecretKey != "shh" {
		t.Errorf("Unexpected auth config: %+v", cfg.Auth)
	}
	origins := cfg.Server.AllowedOrigins
	if len(origins) != 2 || origins[0] != "https://bank.example.com" || origins[1] != "https://app.example.com" {
		t.Errorf("Expected trimmed origin list, got %v", origins)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid duration")
	}
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for zero token TTL")
	}
}
