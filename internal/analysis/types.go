// Package analysis builds finance-grounded prompts, parses model responses,
// and assembles financial health results with a deterministic offline
// fallback.
package analysis

import "time"

// InsightType categorizes a diagnostic insight.
type InsightType string

const (
	// InsightStrength highlights something going well.
	InsightStrength InsightType = "strength"
	// InsightWeakness highlights a problem area.
	InsightWeakness InsightType = "weakness"
	// InsightObservation is a neutral note.
	InsightObservation InsightType = "observation"
)

// Trend describes the direction an insight's subject is moving.
type Trend string

const (
	// TrendImproving indicates the metric is getting better.
	TrendImproving Trend = "improving"
	// TrendStable indicates no significant movement.
	TrendStable Trend = "stable"
	// TrendDeclining indicates the metric is getting worse.
	TrendDeclining Trend = "declining"
)

// Priority ranks a recommendation.
type Priority string

const (
	// PriorityHigh should be acted on first.
	PriorityHigh Priority = "high"
	// PriorityMedium is the default when the model omits a priority.
	PriorityMedium Priority = "medium"
	// PriorityLow can wait.
	PriorityLow Priority = "low"
)

// Field defaults applied when the model omits optional fields.
const (
	defaultImpact  = "Impact not quantified for this item."
	defaultSummary = "Analysis summary unavailable."
)

// Metrics holds the deterministically computed financial ratios. These are
// always derived from the snapshot, never taken from model output.
type Metrics struct {
	SavingsRate          float64 `json:"savingsRate"`
	ExpenseRatio         float64 `json:"expenseRatio"`
	EmergencyFundMonths  float64 `json:"emergencyFundMonths"`
	DebtToIncome         float64 `json:"debtToIncome"`
	InvestmentAllocation float64 `json:"investmentAllocation"`
}

// Insight is a single diagnostic finding.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      string      `json:"impact"`
	Trend       Trend       `json:"trend"`
}

// Recommendation is a single suggested action.
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	Priority    Priority `json:"priority"`
}

// RiskAssessment groups risk narratives by horizon.
type RiskAssessment struct {
	ShortTerm            []string `json:"shortTerm"`
	LongTerm             []string `json:"longTerm"`
	MitigationStrategies []string `json:"mitigationStrategies"`
}

// Result is the complete financial health analysis. Every list field is
// non-nil and every object field is populated so the presentation layer
// never sees a null.
type Result struct {
	GeneratedAt     time.Time        `json:"generatedAt"`
	ID              string           `json:"id"`
	Summary         string           `json:"summary"`
	Metrics         Metrics          `json:"metrics"`
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	RiskAssessment  RiskAssessment   `json:"riskAssessment"`
	HealthScore     int              `json:"healthScore"`
	Degraded        bool             `json:"degraded"`
}

// normalize guarantees non-nil list fields.
func (r *Result) normalize() {
	if r.Insights == nil {
		r.Insights = []Insight{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []Recommendation{}
	}
	if r.RiskAssessment.ShortTerm == nil {
		r.RiskAssessment.ShortTerm = []string{}
	}
	if r.RiskAssessment.LongTerm == nil {
		r.RiskAssessment.LongTerm = []string{}
	}
	if r.RiskAssessment.MitigationStrategies == nil {
		r.RiskAssessment.MitigationStrategies = []string{}
	}
}
