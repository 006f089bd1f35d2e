// Package model defines the core financial domain types.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	// TypeIncome marks a transaction that adds money to an account.
	TypeIncome TransactionType = "income"
	// TypeExpense marks a transaction that removes money from an account.
	TypeExpense TransactionType = "expense"
)

// Transaction represents a single recorded financial transaction.
// Amount is stored as a non-negative magnitude; direction comes from Type.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	AccountID   string          `json:"accountId"`
	Hash        string          `json:"-"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Type,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate checks the transaction invariants before it is persisted.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction ID is required")
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction amount must be a non-negative magnitude")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	return nil
}
