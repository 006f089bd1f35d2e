package analysis

import (
	"errors"
	"math"
	"strings"

	"github.com/lumenfin/pulse/internal/model"
)

// ErrIncompleteAnalysis indicates the model response parsed but carried no
// analytical content. A structurally valid but empty response is not trusted
// as a successful analysis.
var ErrIncompleteAnalysis = errors.New("model response contained no insights or recommendations")

// AssembleOptions tunes assembly behavior.
type AssembleOptions struct {
	// RequireContent rejects responses whose insights and recommendations
	// are both empty. Product-tunable; on by default.
	RequireContent bool
}

// Assemble merges parsed model output with deterministically computed
// metrics and normalizes every optional field to a safe default. The model
// supplies narrative; this function supplies every number. A hallucinated
// figure in the model output can never reach the caller as a metric.
func Assemble(parsed map[string]any, snapshot *model.Snapshot, opts AssembleOptions) (*Result, error) {
	insights := assembleInsights(anySlice(parsed["insights"]))
	recommendations := assembleRecommendations(anySlice(parsed["recommendations"]))

	if opts.RequireContent && len(insights) == 0 && len(recommendations) == 0 {
		return nil, ErrIncompleteAnalysis
	}

	metrics := ComputeMetrics(snapshot)

	result := &Result{
		Summary:         asString(parsed["summary"], defaultSummary),
		Metrics:         metrics,
		Insights:        insights,
		Recommendations: recommendations,
		RiskAssessment:  assembleRisk(parsed["riskAssessment"]),
		HealthScore:     assembleScore(parsed["healthScore"], metrics),
	}
	result.normalize()
	return result, nil
}

// assembleScore takes the model's score when it is a sane number, otherwise
// recomputes one from the metrics.
func assembleScore(v any, metrics Metrics) int {
	if f, ok := v.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return clampScore(int(math.Round(f)))
	}
	return scoreFromMetrics(metrics)
}

func assembleInsights(items []map[string]any) []Insight {
	insights := make([]Insight, 0, len(items))
	for _, item := range items {
		insight := Insight{
			Type:        normalizeInsightType(asString(item["type"], "")),
			Title:       asString(item["title"], "Untitled insight"),
			Description: asString(item["description"], ""),
			Impact:      asString(item["impact"], defaultImpact),
			Trend:       normalizeTrend(asString(item["trend"], "")),
		}
		insights = append(insights, insight)
	}
	return insights
}

func assembleRecommendations(items []map[string]any) []Recommendation {
	recommendations := make([]Recommendation, 0, len(items))
	for _, item := range items {
		rec := Recommendation{
			Title:       asString(item["title"], "Untitled recommendation"),
			Description: asString(item["description"], ""),
			Impact:      asString(item["impact"], defaultImpact),
			Priority:    normalizePriority(asString(item["priority"], "")),
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations
}

func assembleRisk(v any) RiskAssessment {
	risk := RiskAssessment{
		ShortTerm:            []string{},
		LongTerm:             []string{},
		MitigationStrategies: []string{},
	}
	m, ok := v.(map[string]any)
	if !ok {
		return risk
	}
	risk.ShortTerm = stringSlice(m["shortTerm"])
	risk.LongTerm = stringSlice(m["longTerm"])
	risk.MitigationStrategies = stringSlice(m["mitigationStrategies"])
	return risk
}

func normalizeInsightType(s string) InsightType {
	switch InsightType(strings.ToLower(s)) {
	case InsightStrength:
		return InsightStrength
	case InsightWeakness:
		return InsightWeakness
	default:
		return InsightObservation
	}
}

func normalizeTrend(s string) Trend {
	switch Trend(strings.ToLower(s)) {
	case TrendImproving:
		return TrendImproving
	case TrendDeclining:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func normalizePriority(s string) Priority {
	switch Priority(strings.ToLower(s)) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func anySlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
