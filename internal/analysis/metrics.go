package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfin/pulse/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// analysisMonth returns the calendar month of the most recent transaction.
// Anchoring to the data's own timeline keeps the metrics meaningful for
// stale or imported data; wall-clock "now" is only used when there are no
// transactions at all.
func analysisMonth(transactions []model.Transaction) (int, time.Month) {
	if len(transactions) == 0 {
		now := time.Now()
		return now.Year(), now.Month()
	}
	latest := transactions[0].Date
	for _, t := range transactions[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest.Year(), latest.Month()
}

// monthlyTotals sums income and expense magnitudes for the analysis month.
func monthlyTotals(transactions []model.Transaction) (income, expenses decimal.Decimal) {
	year, month := analysisMonth(transactions)
	income = decimal.Zero
	expenses = decimal.Zero
	for _, t := range transactions {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		switch t.Type {
		case model.TypeIncome:
			income = income.Add(t.Amount.Abs())
		case model.TypeExpense:
			expenses = expenses.Add(t.Amount.Abs())
		}
	}
	return income, expenses
}

// ComputeMetrics derives all financial ratios from the snapshot.
func ComputeMetrics(snapshot *model.Snapshot) Metrics {
	income, expenses := monthlyTotals(snapshot.Transactions)
	totalBalance := snapshot.TotalBalance()

	var m Metrics

	if income.IsPositive() {
		m.SavingsRate = income.Sub(expenses).Div(income).Mul(oneHundred).InexactFloat64()
		m.ExpenseRatio = expenses.Div(income).Mul(oneHundred).InexactFloat64()
		m.DebtToIncome = snapshot.TotalDebt().Div(income).Mul(oneHundred).InexactFloat64()
	} else {
		m.SavingsRate = 0
		m.ExpenseRatio = 100
		m.DebtToIncome = 0
	}

	if expenses.IsPositive() {
		m.EmergencyFundMonths = totalBalance.Div(expenses).InexactFloat64()
	}

	if totalBalance.IsPositive() {
		invested := decimal.Zero
		for i := range snapshot.Accounts {
			if snapshot.Accounts[i].AccountType == model.AccountInvestment {
				invested = invested.Add(snapshot.Accounts[i].Balance)
			}
		}
		m.InvestmentAllocation = invested.Div(totalBalance).Mul(oneHundred).InexactFloat64()
	}

	return m
}
