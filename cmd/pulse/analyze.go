package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenfin/pulse/internal/analysis"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a financial health analysis",
		Long: `Analyze your accounts and transactions and produce a financial health
report: a 0-100 health score, key metrics, insights, recommendations, and
a risk assessment.

The analysis is produced by the configured AI provider chain. When no
provider is reachable, a locally computed result is returned instead and
marked as degraded.`,
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("json", false, "Print the raw analysis result as JSON")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	engine, err := buildEngine(store, slog.Default())
	if err != nil {
		return err
	}

	result, err := engine.Analyze(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printAnalysis(result)
	return nil
}

func printAnalysis(result *analysis.Result) {
	fmt.Printf("\nFinancial Health Score: %d/100\n", result.HealthScore)
	if result.Degraded {
		fmt.Println("(computed locally; AI analysis was unavailable)")
	}
	fmt.Printf("\n%s\n", result.Summary)

	fmt.Println("\nKey metrics:")
	fmt.Printf("  Savings rate:          %.1f%%\n", result.Metrics.SavingsRate)
	fmt.Printf("  Expense ratio:         %.1f%%\n", result.Metrics.ExpenseRatio)
	fmt.Printf("  Emergency fund:        %.1f months\n", result.Metrics.EmergencyFundMonths)
	fmt.Printf("  Debt to income:        %.1f%%\n", result.Metrics.DebtToIncome)
	fmt.Printf("  Investment allocation: %.1f%%\n", result.Metrics.InvestmentAllocation)

	if len(result.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, insight := range result.Insights {
			fmt.Printf("  [%s] %s\n", insight.Type, insight.Title)
			fmt.Printf("      %s\n", insight.Description)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("  [%s] %s\n", rec.Priority, rec.Title)
			fmt.Printf("      %s\n", rec.Description)
		}
	}

	risk := result.RiskAssessment
	if len(risk.ShortTerm) > 0 || len(risk.LongTerm) > 0 || len(risk.MitigationStrategies) > 0 {
		fmt.Println("\nRisk assessment:")
		if len(risk.ShortTerm) > 0 {
			fmt.Printf("  Short term: %s\n", strings.Join(risk.ShortTerm, "; "))
		}
		if len(risk.LongTerm) > 0 {
			fmt.Printf("  Long term:  %s\n", strings.Join(risk.LongTerm, "; "))
		}
		if len(risk.MitigationStrategies) > 0 {
			fmt.Printf("  Mitigation: %s\n", strings.Join(risk.MitigationStrategies, "; "))
		}
	}
	fmt.Println()
}
