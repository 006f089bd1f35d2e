package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumenfin/pulse/internal/model"
)

// PromptBuilder turns a financial snapshot into a bounded, sanitized prompt
// with an explicit output-format contract. All arithmetic is done here so
// the model is never asked to compute numbers.
type PromptBuilder struct {
	maxChars        int
	maxTransactions int
}

// NewPromptBuilder creates a prompt builder with default budget limits.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		maxChars:        8000,
		maxTransactions: 50,
	}
}

// Build renders the analysis prompt for the given snapshot.
func (pb *PromptBuilder) Build(snapshot *model.Snapshot) string {
	metrics := ComputeMetrics(snapshot)
	income, expenses := monthlyTotals(snapshot.Transactions)
	year, month := analysisMonth(snapshot.Transactions)

	var b strings.Builder

	b.WriteString("You are a personal finance analyst. Analyze the following financial data and assess the user's financial health.\n\n")

	fmt.Fprintf(&b, "Analysis period: %s %d (the month of the most recent transaction)\n\n", month, year)

	b.WriteString("Precomputed aggregates (do not recompute these):\n")
	fmt.Fprintf(&b, "- totalBalance: %s\n", snapshot.TotalBalance().StringFixed(2))
	fmt.Fprintf(&b, "- monthlyIncome: %s\n", income.StringFixed(2))
	fmt.Fprintf(&b, "- monthlyExpenses: %s\n", expenses.StringFixed(2))
	fmt.Fprintf(&b, "- savingsRate: %.1f%%\n", metrics.SavingsRate)
	fmt.Fprintf(&b, "- expenseRatio: %.1f%%\n", metrics.ExpenseRatio)
	fmt.Fprintf(&b, "- emergencyFundMonths: %.1f\n", metrics.EmergencyFundMonths)
	fmt.Fprintf(&b, "- debtToIncome: %.1f%%\n", metrics.DebtToIncome)
	fmt.Fprintf(&b, "- investmentAllocation: %.1f%%\n\n", metrics.InvestmentAllocation)

	b.WriteString("Accounts:\n")
	for i := range snapshot.Accounts {
		a := &snapshot.Accounts[i]
		fmt.Fprintf(&b, "- name: %s | type: %s | balance: %s %s\n",
			sanitizeText(a.Name), a.AccountType, a.Balance.StringFixed(2), a.Currency)
	}
	b.WriteString("\n")

	pb.writeTransactions(&b, snapshot.Transactions)

	b.WriteString(outputContract)
	return b.String()
}

// writeTransactions emits the most recent transactions, bounded by both the
// transaction count limit and the remaining character budget. Truncation
// drops transaction detail, never the contract block.
func (pb *PromptBuilder) writeTransactions(b *strings.Builder, transactions []model.Transaction) {
	sorted := make([]model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	limit := len(sorted)
	if limit > pb.maxTransactions {
		limit = pb.maxTransactions
	}

	budget := pb.maxChars - b.Len() - len(outputContract)

	var lines strings.Builder
	included := 0
	for _, t := range sorted[:limit] {
		line := fmt.Sprintf("- %s | %s | %s | %s | %s\n",
			t.Date.Format("2006-01-02"),
			t.Type,
			t.Amount.StringFixed(2),
			sanitizeText(t.Category),
			sanitizeText(t.Description))
		if lines.Len()+len(line) > budget {
			break
		}
		lines.WriteString(line)
		included++
	}

	fmt.Fprintf(b, "Recent transactions (%d of %d, most recent first):\n", included, len(sorted))
	b.WriteString(lines.String())
	b.WriteString("\n")
}

// sanitizeText neutralizes user-provided free text so it cannot break the
// prompt structure: double quotes become single quotes and newlines collapse
// to spaces.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}

// outputContract is the strict response-format instruction block. The
// response sanitizer is built to defend against violations of exactly
// these rules.
const outputContract = `Respond with EXACTLY ONE JSON object and nothing else.
Rules:
- No markdown code fences.
- No comments.
- All keys and string values double-quoted.
- No trailing commas.

Schema:
{
  "healthScore": <integer 0-100>,
  "summary": "<2-3 sentence overall assessment>",
  "insights": [
    {"type": "strength|weakness|observation", "title": "...", "description": "...", "impact": "...", "trend": "improving|stable|declining"}
  ],
  "recommendations": [
    {"title": "...", "description": "...", "impact": "...", "priority": "high|medium|low"}
  ],
  "riskAssessment": {
    "shortTerm": ["..."],
    "longTerm": ["..."],
    "mitigationStrategies": ["..."]
  }
}
`
