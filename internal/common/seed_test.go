package common

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vertex-bank-go/internal/database"
	"vertex-bank-go/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const testSeed = `
users:
  - email: alice@example.com
    full_name: Alice
    password: alice-secret
    opening_balance: "100.00"
  - email: bob@example.com
    full_name: Bob
    password: bob-secret
    opening_balance: "25.50"
  - email: carol@example.com
    full_name: Carol
    password: carol-secret
transfers:
  - from: alice@example.com
    to: carol@example.com
    amount: "40"
    description: Rent share
`

func setupTestServices(t *testing.T) *Services {
	t.Helper()
	cfg := &models.Config{
		Database: models.DatabaseConfig{
			Driver:             database.DriverSQLite,
			Path:               filepath.Join(t.TempDir(), "seed.db"),
			MaxOpenConns:       4,
			MaxIdleConns:       2,
			PingTimeout:        5 * time.Second,
			BusyTimeout:        10 * time.Second,
			AtomicMaxAttempts:  5,
			AtomicRetryBackoff: 5 * time.Millisecond,
		},
		Metrics: models.MetricsConfig{Namespace: "test"},
	}
	services, err := InitializeLedger(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeLedger failed: %v", err)
	}
	t.Cleanup(services.Close)
	return services
}

func TestParseSeedConfig(t *testing.T) {
	config, err := ParseSeedConfig([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeedConfig failed: %v", err)
	}
	if len(config.Users) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(config.Users))
	}
	if config.Users[1].OpeningBalance != "25.50" {
		t.Errorf("Expected opening balance 25.50, got %q", config.Users[1].OpeningBalance)
	}
	if len(config.Transfers) != 1 || config.Transfers[0].Description != "Rent share" {
		t.Errorf("Unexpected transfers: %+v", config.Transfers)
	}
}

func TestParseSeedConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing email", "users:\n  - password: x\n", "missing email"},
		{"missing password", "users:\n  - email: a@example.com\n", "missing password"},
		{"duplicate", "users:\n  - {email: a@example.com, password: x}\n  - {email: a@example.com, password: y}\n", "more than once"},
		{"bad balance", "users:\n  - {email: a@example.com, password: x, opening_balance: ten}\n", "invalid opening_balance"},
		{"bad transfer", "transfers:\n  - {from: a@example.com, to: b@example.com, amount: lots}\n", "invalid amount"},
		{"transfer endpoints", "transfers:\n  - {from: a@example.com, amount: \"1\"}\n", "missing from or to"},
		{"not yaml", "users: [", "unable to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeedConfig([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadSeedConfig_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(testSeed), 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	config, err := LoadSeedConfig(path)
	if err != nil {
		t.Fatalf("LoadSeedConfig failed: %v", err)
	}
	if len(config.Users) != 3 {
		t.Errorf("Expected 3 users, got %d", len(config.Users))
	}

	if _, err := LoadSeedConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	services := setupTestServices(t)
	seeder := NewSeeder(services)
	seeder.HashCost = bcrypt.MinCost

	config, err := ParseSeedConfig([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeedConfig failed: %v", err)
	}

	result, err := seeder.ApplySeed(ctx, config)
	if err != nil {
		t.Fatalf("ApplySeed failed: %v", err)
	}
	want := SeedResult{Created: 3, Deposits: 2, Transfers: 1}
	if result != want {
		t.Errorf("Expected %+v, got %+v", want, result)
	}

	balances := map[string]string{
		"alice@example.com": "60.00",
		"bob@example.com":   "25.50",
		"carol@example.com": "40.00",
	}
	for email, expected := range balances {
		user, err := services.Store.GetUserByEmail(ctx, email)
		if err != nil {
			t.Fatalf("GetUserByEmail(%s) failed: %v", email, err)
		}
		account, err := services.Directory.AccountForUser(ctx, user.Id)
		if err != nil {
			t.Fatalf("AccountForUser(%s) failed: %v", email, err)
		}
		if got := FormatMoney(account.Balance); got != expected {
			t.Errorf("Expected %s balance %s, got %s", email, expected, got)
		}
	}

	// Rerunning skips users that already exist.
	config.Transfers = nil
	result, err = seeder.ApplySeed(ctx, config)
	if err != nil {
		t.Fatalf("Second ApplySeed failed: %v", err)
	}
	if result != (SeedResult{Skipped: 3}) {
		t.Errorf("Expected all users skipped, got %+v", result)
	}
}

func TestApplySeed_TransferFailure(t *testing.T) {
	services := setupTestServices(t)
	seeder := NewSeeder(services)
	seeder.HashCost = bcrypt.MinCost

	config, err := ParseSeedConfig([]byte(`
users:
  - {email: poor@example.com, full_name: Poor, password: x}
  - {email: rich@example.com, full_name: Rich, password: y, opening_balance: "5"}
transfers:
  - {from: poor@example.com, to: rich@example.com, amount: "10"}
`))
	if err != nil {
		t.Fatalf("ParseSeedConfig failed: %v", err)
	}

	result, err := seeder.ApplySeed(context.Background(), config)
	if err == nil {
		t.Fatal("Expected transfer to fail on insufficient funds")
	}
	if result.Created != 2 || result.Transfers != 0 {
		t.Errorf("Unexpected partial result %+v", result)
	}
}
