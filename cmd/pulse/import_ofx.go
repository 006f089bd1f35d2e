package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lumenfin/pulse/internal/model"
	"github.com/lumenfin/pulse/internal/ofx"
)

func init() {
	importOFXCmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import accounts and transactions from OFX/QFX files",
		Long: `Import accounts and transactions from OFX or QFX (Quicken) files exported
from your bank.

Examples:
  # Import single file
  pulse import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import multiple files
  pulse import-ofx ~/Downloads/chase_*.qfx ~/Downloads/ally_*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	importOFXCmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	rootCmd.AddCommand(importOFXCmd)
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files...",
		"file_count", len(allFiles),
		"dry_run", dryRun)

	var accounts []model.Account
	var transactions []model.Transaction
	seenAccounts := make(map[string]bool)
	seenHashes := make(map[string]bool)

	parser := ofx.NewParser()
	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Parsing statements..."),
	)

	for _, filePath := range allFiles {
		result, err := parseOFXFile(cmd, parser, filePath)
		_ = bar.Add(1)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		for _, account := range result.Accounts {
			if !seenAccounts[account.ID] {
				seenAccounts[account.ID] = true
				accounts = append(accounts, account)
			}
		}
		added := 0
		for _, tx := range result.Transactions {
			if !seenHashes[tx.Hash] {
				seenHashes[tx.Hash] = true
				transactions = append(transactions, tx)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions_found", len(result.Transactions),
			"added", added,
			"duplicates", len(result.Transactions)-added)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if len(transactions) == 0 && len(accounts) == 0 {
		slog.Warn("Nothing found to import")
		return nil
	}

	if dryRun {
		slog.Info("Dry run complete - no data saved",
			"accounts", len(accounts),
			"transactions", len(transactions))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	if err := store.SaveAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Import complete",
		"accounts", len(accounts),
		"transactions", len(transactions))
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, filePath string) (*ofx.ImportResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}
