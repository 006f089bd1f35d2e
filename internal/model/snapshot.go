package model

import "github.com/shopspring/decimal"

// Snapshot is the point-in-time bundle of a user's financial data used as
// analysis input.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// TotalBalance sums the balances of all accounts.
func (s *Snapshot) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Accounts {
		total = total.Add(s.Accounts[i].Balance)
	}
	return total
}

// TotalDebt sums the balances of credit and loan accounts.
func (s *Snapshot) TotalDebt() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Accounts {
		if s.Accounts[i].IsDebt() {
			total = total.Add(s.Accounts[i].Balance)
		}
	}
	return total
}
