package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfin/pulse/internal/model"
)

func TestComputeOffline(t *testing.T) {
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("healthy finances", func(t *testing.T) {
		snapshot := &model.Snapshot{
			Accounts: []model.Account{
				account(model.AccountChecking, "12000"),
			},
			Transactions: []model.Transaction{
				tx(march, model.TypeIncome, "5000"),
				tx(march, model.TypeExpense, "2000"),
			},
		}

		result := ComputeOffline(snapshot)

		// Savings rate 60% (>=20 target, +15), expense ratio 40% (<=80,
		// +15), emergency fund 6 months (>=6 target, +20): 50+15+15+20.
		assert.Equal(t, 100, result.HealthScore)
		assert.True(t, result.Degraded)
		assert.NotEmpty(t, result.Summary)
		require.NotEmpty(t, result.Insights)
		require.NotEmpty(t, result.Recommendations)
	})

	t.Run("struggling finances", func(t *testing.T) {
		snapshot := &model.Snapshot{
			Accounts: []model.Account{
				account(model.AccountChecking, "100"),
			},
			Transactions: []model.Transaction{
				tx(march, model.TypeIncome, "1000"),
				tx(march, model.TypeExpense, "2000"),
			},
		}

		result := ComputeOffline(snapshot)

		// Savings -100% (capped -15), expense 200% (capped -15),
		// emergency 0.05 months (~0): about 20.
		assert.True(t, result.Degraded)
		assert.LessOrEqual(t, result.HealthScore, 25)
		assert.GreaterOrEqual(t, result.HealthScore, 0)
	})

	t.Run("empty snapshot still yields a result", func(t *testing.T) {
		result := ComputeOffline(&model.Snapshot{})

		require.NotNil(t, result)
		assert.True(t, result.Degraded)
		assert.GreaterOrEqual(t, result.HealthScore, 0)
		assert.LessOrEqual(t, result.HealthScore, 100)
		assert.NotNil(t, result.Insights)
		assert.NotNil(t, result.Recommendations)
		assert.NotNil(t, result.RiskAssessment.ShortTerm)
		assert.NotNil(t, result.RiskAssessment.LongTerm)
		assert.NotNil(t, result.RiskAssessment.MitigationStrategies)
	})

	t.Run("score always within bounds", func(t *testing.T) {
		extremes := []*model.Snapshot{
			{},
			{
				Accounts: []model.Account{account(model.AccountSavings, "99999999")},
				Transactions: []model.Transaction{
					tx(march, model.TypeIncome, "1000000"),
					tx(march, model.TypeExpense, "1"),
				},
			},
			{
				Transactions: []model.Transaction{
					tx(march, model.TypeIncome, "1"),
					tx(march, model.TypeExpense, "1000000"),
				},
			},
		}

		for _, snapshot := range extremes {
			result := ComputeOffline(snapshot)
			assert.GreaterOrEqual(t, result.HealthScore, 0)
			assert.LessOrEqual(t, result.HealthScore, 100)
		}
	})
}

func TestScoreFromMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    int
	}{
		{
			name: "all targets met",
			metrics: Metrics{
				SavingsRate:         20,
				ExpenseRatio:        80,
				EmergencyFundMonths: 6,
			},
			want: 100,
		},
		{
			name:    "neutral baseline",
			metrics: Metrics{SavingsRate: 0, ExpenseRatio: 100, EmergencyFundMonths: 0},
			// 50 + 0 - 15 + 0
			want: 35,
		},
		{
			name: "partial credit scales linearly",
			metrics: Metrics{
				SavingsRate:         10, // half target: +7.5
				ExpenseRatio:        70, // under max: +15
				EmergencyFundMonths: 3,  // half target: +10
			},
			// 50 + 7.5 + 15 + 10 = 82.5, rounds half away from zero.
			want: 83,
		},
		{
			name: "deeply negative savings is capped",
			metrics: Metrics{
				SavingsRate:         -500,
				ExpenseRatio:        600,
				EmergencyFundMonths: 0,
			},
			// 50 - 15 - 15 + 0
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreFromMetrics(tt.metrics))
		})
	}
}

func TestMinimalResult(t *testing.T) {
	result := minimalResult("unexpected nil")

	assert.True(t, result.Degraded)
	assert.Equal(t, 0, result.HealthScore)
	require.Len(t, result.Insights, 1)
	assert.Contains(t, result.Insights[0].Description, "unexpected nil")
	assert.NotNil(t, result.Recommendations)
}
