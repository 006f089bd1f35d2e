package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lumenfin/pulse/internal/model"
	"github.com/lumenfin/pulse/internal/service"
	"github.com/lumenfin/pulse/internal/storage"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())
	cmd.AddCommand(accountsRemoveCmd())

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				accounts, err := store.GetAccounts(cmd.Context())
				if err != nil {
					return err
				}
				if len(accounts) == 0 {
					fmt.Println("No accounts yet. Add one with 'pulse accounts add'.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tCURRENCY\tBALANCE")
				for _, a := range accounts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						a.ID, a.Name, a.AccountType, a.Currency, a.Balance.StringFixed(2))
				}
				return w.Flush()
			})
		},
	}
}

func accountsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			accountType, _ := cmd.Flags().GetString("type")
			currency, _ := cmd.Flags().GetString("currency")
			rawBalance, _ := cmd.Flags().GetString("balance")

			balance, err := decimal.NewFromString(rawBalance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", rawBalance, err)
			}

			account := model.Account{
				ID:          uuid.New().String(),
				Name:        name,
				Provider:    "manual",
				AccountType: model.AccountType(accountType),
				Currency:    currency,
				Balance:     balance,
			}
			if err := account.Validate(); err != nil {
				return err
			}

			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.SaveAccounts(cmd.Context(), []model.Account{account}); err != nil {
					return err
				}
				fmt.Printf("Added account %s (%s)\n", account.Name, account.ID)
				return nil
			})
		},
	}

	cmd.Flags().String("name", "", "account display name")
	cmd.Flags().String("type", "checking", "account type (checking, savings, wallet, investment, credit, loan)")
	cmd.Flags().String("currency", "USD", "ISO currency code")
	cmd.Flags().String("balance", "0", "current balance")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func accountsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				if err := store.DeleteAccount(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed account %s\n", args[0])
				return nil
			})
		},
	}
}

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := transactionFilterFromFlags(cmd)
			if err != nil {
				return err
			}

			return withStorage(cmd, func(store *storage.SQLiteStorage) error {
				transactions, err := store.GetTransactions(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(transactions) == 0 {
					fmt.Println("No transactions found.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
				for _, t := range transactions {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						t.Date.Format("2006-01-02"), t.Type, t.Amount.StringFixed(2), t.Category, t.Description)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().String("account", "", "filter by account ID")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 50, "maximum transactions to show")

	return cmd
}

func transactionFilterFromFlags(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	filter.AccountID, _ = cmd.Flags().GetString("account")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if raw, _ := cmd.Flags().GetString("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", raw)
		}
		filter.StartDate = &parsed
	}
	if raw, _ := cmd.Flags().GetString("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", raw)
		}
		filter.EndDate = &parsed
	}

	return filter, nil
}

// withStorage opens storage, runs fn, and always closes it.
func withStorage(cmd *cobra.Command, fn func(*storage.SQLiteStorage) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()
	return fn(store)
}
