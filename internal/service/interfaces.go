// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/lumenfin/pulse/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// Storage defines the contract for the persistence layer. The analysis core
// only depends on GetSnapshot; the command and HTTP surfaces use the rest.
type Storage interface {
	// Account operations
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// GetSnapshot bundles all accounts and transactions for analysis.
	GetSnapshot(ctx context.Context) (*model.Snapshot, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
