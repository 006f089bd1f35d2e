package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType categorizes an account for metric computation.
type AccountType string

const (
	// AccountChecking is a standard checking or current account.
	AccountChecking AccountType = "checking"
	// AccountSavings is a savings account.
	AccountSavings AccountType = "savings"
	// AccountWallet is an e-wallet or prepaid balance.
	AccountWallet AccountType = "wallet"
	// AccountInvestment holds invested assets.
	AccountInvestment AccountType = "investment"
	// AccountCredit is a credit card or revolving credit line.
	AccountCredit AccountType = "credit"
	// AccountLoan is an outstanding loan balance.
	AccountLoan AccountType = "loan"
)

// Account represents a registered bank or e-wallet account.
type Account struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Provider    string          `json:"provider"`
	AccountType AccountType     `json:"accountType"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
}

// IsDebt reports whether the account balance represents money owed.
func (a *Account) IsDebt() bool {
	return a.AccountType == AccountCredit || a.AccountType == AccountLoan
}

// Validate checks the account invariants before it is persisted.
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account ID is required")
	}
	if a.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if a.Balance.IsNegative() {
		return fmt.Errorf("account balance must be non-negative")
	}
	return nil
}
