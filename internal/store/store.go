package store

import (
	"context"
	"errors"
	"time"

	"vertex-bank-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrDuplicateAccountNumber = errors.New("account number already in use")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrBalanceMismatch        = errors.New("balance does not match transaction history")
)

// CreateUserParams contains the parameters for inserting a user.
type CreateUserParams struct {
	Id             string
	Email          string
	FullName       string
	HashedPassword string
	CreatedAt      time.Time
}

// CreateAccountParams contains the parameters for inserting an account.
// New accounts always start at a zero balance.
type CreateAccountParams struct {
	Id        string
	Number    string
	UserId    string
	CreatedAt time.Time
}

// UpdateBalanceParams carries the new balance and the version the caller read.
type UpdateBalanceParams struct {
	AccountId       string
	Balance         decimal.Decimal
	ExpectedVersion int64
}

// InsertTransactionParams contains the parameters for appending a ledger entry.
type InsertTransactionParams struct {
	Id              string
	AccountId       string
	TransactionType models.TransactionType
	Amount          decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
	Description     string
	CreatedAt       time.Time
}

// Queries is the set of reads and writes available both on the store handle
// and inside an atomic unit.
type Queries interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)

	// --- Accounts ---
	GetAccountById(ctx context.Context, accountId string) (*models.Account, error)
	GetAccountByUserId(ctx context.Context, userId string) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*models.Account, error)
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	// LockAccounts locks the given accounts in ascending id order for the rest
	// of the enclosing atomic unit and returns them keyed by id.
	LockAccounts(ctx context.Context, accountIds ...string) (map[string]*models.Account, error)
	UpdateAccountBalance(ctx context.Context, params UpdateBalanceParams) error

	// --- Transactions ---
	InsertTransaction(ctx context.Context, params InsertTransactionParams) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountId string, offset, limit int) ([]models.Transaction, error)
	ListAllTransactions(ctx context.Context, accountId string) ([]models.Transaction, error)
}

// LedgerStore defines the contract that every backend (SQLite, Postgres) must satisfy.
type LedgerStore interface {
	Queries

	// RunAtomic executes fn inside a single transaction. Everything fn writes
	// through q commits together when fn returns nil, and is rolled back otherwise.
	RunAtomic(ctx context.Context, fn func(q Queries) error) error

	// ReconcileAccountBalance replays the account history and returns
	// ErrBalanceMismatch if it does not lead to the stored balance.
	ReconcileAccountBalance(ctx context.Context, accountId string) error

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
