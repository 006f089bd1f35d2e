package analysis

import (
	"fmt"
	"math"

	"github.com/lumenfin/pulse/internal/model"
)

// Score weighting targets. Each term is capped so no single factor can push
// the score outside [0,100] before the final clamp.
const (
	baseScore           = 50
	savingsRateTarget   = 20.0
	savingsRateWeight   = 15.0
	expenseRatioMax     = 80.0
	expenseRatioWeight  = 15.0
	emergencyFundTarget = 6.0
	emergencyFundWeight = 20.0
)

// ComputeOffline produces a complete analysis result from raw financial
// data with no network dependency. It is a total function: any well-typed
// snapshot yields a valid result, and an unexpected panic during
// calculation is converted to a minimal all-zero result rather than
// propagating.
func ComputeOffline(snapshot *model.Snapshot) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			result = minimalResult(fmt.Sprintf("%v", r))
		}
	}()

	metrics := ComputeMetrics(snapshot)
	score := scoreFromMetrics(metrics)

	result = &Result{
		HealthScore: score,
		Summary: fmt.Sprintf(
			"AI analysis was unavailable, so this assessment was computed locally. "+
				"Your savings rate is %.1f%%, your expenses consume %.1f%% of income, "+
				"and your balances cover %.1f months of expenses.",
			metrics.SavingsRate, metrics.ExpenseRatio, metrics.EmergencyFundMonths),
		Metrics: metrics,
		Insights: []Insight{
			{
				Type:        InsightWeakness,
				Title:       "AI analysis unavailable",
				Description: "All AI providers were unreachable, so only locally computed figures are shown.",
				Impact:      "Narrative insights and tailored advice are missing from this report.",
				Trend:       TrendStable,
			},
		},
		Recommendations: []Recommendation{
			{
				Title:       "Retry the analysis later",
				Description: "Run the analysis again once connectivity to an AI provider is restored for a full assessment.",
				Impact:      defaultImpact,
				Priority:    PriorityMedium,
			},
		},
		Degraded: true,
	}
	result.normalize()
	return result
}

// scoreFromMetrics applies the weighted scoring model: start at 50, add a
// capped term per factor, clamp to [0,100].
func scoreFromMetrics(m Metrics) int {
	var savingsTerm float64
	if m.SavingsRate >= savingsRateTarget {
		savingsTerm = savingsRateWeight
	} else {
		// Negative savings rates pull the term negative.
		savingsTerm = (m.SavingsRate / savingsRateTarget) * savingsRateWeight
	}
	savingsTerm = clampTerm(savingsTerm, -savingsRateWeight, savingsRateWeight)

	var expenseTerm float64
	if m.ExpenseRatio <= expenseRatioMax {
		expenseTerm = expenseRatioWeight
	} else {
		expenseTerm = -((m.ExpenseRatio - expenseRatioMax) / 20.0) * expenseRatioWeight
	}
	expenseTerm = clampTerm(expenseTerm, -expenseRatioWeight, expenseRatioWeight)

	var emergencyTerm float64
	if m.EmergencyFundMonths >= emergencyFundTarget {
		emergencyTerm = emergencyFundWeight
	} else {
		emergencyTerm = (m.EmergencyFundMonths / emergencyFundTarget) * emergencyFundWeight
	}
	emergencyTerm = clampTerm(emergencyTerm, 0, emergencyFundWeight)

	return clampScore(int(math.Round(baseScore + savingsTerm + expenseTerm + emergencyTerm)))
}

func clampTerm(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// minimalResult is the terminal safety net: a valid all-zero result with an
// insight describing the internal failure.
func minimalResult(reason string) *Result {
	r := &Result{
		HealthScore: 0,
		Summary:     "Analysis could not be completed.",
		Insights: []Insight{
			{
				Type:        InsightWeakness,
				Title:       "Analysis error",
				Description: fmt.Sprintf("An internal error interrupted the calculation: %s", reason),
				Impact:      defaultImpact,
				Trend:       TrendStable,
			},
		},
		Recommendations: []Recommendation{},
		Degraded:        true,
	}
	r.normalize()
	return r
}
