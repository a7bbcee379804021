package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vertex-bank-go/internal/database"
	"vertex-bank-go/internal/models"
	"vertex-bank-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupTestLedger(t *testing.T) (*database.Service, *Directory, *Engine) {
	t.Helper()
	svc, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:             database.DriverSQLite,
		Path:               filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:       8,
		MaxIdleConns:       4,
		PingTimeout:        5 * time.Second,
		BusyTimeout:        10 * time.Second,
		AtomicMaxAttempts:  5,
		AtomicRetryBackoff: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(svc.Close)

	directory := NewDirectory(svc, nil)
	return svc, directory, NewEngine(svc, directory, nil)
}

func registerTestUser(t *testing.T, directory *Directory, email string) (*models.User, *models.Account) {
	t.Helper()
	user, account, err := directory.Register(context.Background(), RegisterParams{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user, account
}

func fundTestAccount(t *testing.T, engine *Engine, accountId string, amount string) {
	t.Helper()
	if _, err := engine.Post(context.Background(), accountId, models.TransactionTypeDeposit, decimal.RequireFromString(amount), "opening"); err != nil {
		t.Fatalf("Funding deposit failed: %v", err)
	}
}

func balanceOf(t *testing.T, svc *database.Service, accountId string) decimal.Decimal {
	t.Helper()
	account, err := svc.GetAccountById(context.Background(), accountId)
	if err != nil {
		t.Fatalf("GetAccountById failed: %v", err)
	}
	return account.Balance
}

func historyOf(t *testing.T, svc *database.Service, accountId string) []models.Transaction {
	t.Helper()
	history, err := svc.ListAllTransactions(context.Background(), accountId)
	if err != nil {
		t.Fatalf("ListAllTransactions failed: %v", err)
	}
	return history
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func updateParams(account *models.Account, balance string) store.UpdateBalanceParams {
	return store.UpdateBalanceParams{
		AccountId:       account.Id,
		Balance:         decimal.RequireFromString(balance),
		ExpectedVersion: account.Version,
	}
}
