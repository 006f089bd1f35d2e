package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionHash(t *testing.T) {
	base := Transaction{
		ID:          "t1",
		Date:        time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Description: "Coffee",
		AccountID:   "a1",
		Type:        TypeExpense,
		Amount:      decimal.RequireFromString("4.50"),
	}

	t.Run("identical content hashes identically", func(t *testing.T) {
		other := base
		other.ID = "t2" // ID does not participate in the hash
		assert.Equal(t, base.GenerateHash(), other.GenerateHash())
	})

	t.Run("time of day does not matter", func(t *testing.T) {
		other := base
		other.Date = time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, base.GenerateHash(), other.GenerateHash())
	})

	t.Run("each field changes the hash", func(t *testing.T) {
		variants := []Transaction{base, base, base, base}
		variants[0].Amount = decimal.RequireFromString("5.50")
		variants[1].Date = base.Date.AddDate(0, 0, 1)
		variants[2].Description = "Tea"
		variants[3].AccountID = "a2"

		for i, v := range variants {
			assert.NotEqual(t, base.GenerateHash(), v.GenerateHash(), "variant %d", i)
		}
	})
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:     "t1",
		Date:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Type:   TypeIncome,
		Amount: decimal.RequireFromString("100"),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate func(*Transaction)
		name   string
	}{
		{name: "missing ID", mutate: func(tx *Transaction) { tx.ID = "" }},
		{name: "bad type", mutate: func(tx *Transaction) { tx.Type = "transfer" }},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("-1") }},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			assert.Error(t, tx.Validate())
		})
	}
}

func TestSnapshotTotals(t *testing.T) {
	snapshot := &Snapshot{
		Accounts: []Account{
			{ID: "a1", Name: "c", AccountType: AccountChecking, Balance: decimal.RequireFromString("1000")},
			{ID: "a2", Name: "i", AccountType: AccountInvestment, Balance: decimal.RequireFromString("5000")},
			{ID: "a3", Name: "cc", AccountType: AccountCredit, Balance: decimal.RequireFromString("300")},
			{ID: "a4", Name: "l", AccountType: AccountLoan, Balance: decimal.RequireFromString("700")},
		},
	}

	assert.True(t, snapshot.TotalBalance().Equal(decimal.RequireFromString("7000")))
	assert.True(t, snapshot.TotalDebt().Equal(decimal.RequireFromString("1000")))
}

func TestAccountIsDebt(t *testing.T) {
	assert.True(t, (&Account{AccountType: AccountCredit}).IsDebt())
	assert.True(t, (&Account{AccountType: AccountLoan}).IsDebt())
	assert.False(t, (&Account{AccountType: AccountChecking}).IsDebt())
	assert.False(t, (&Account{AccountType: AccountInvestment}).IsDebt())
}
