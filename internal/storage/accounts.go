package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lumenfin/pulse/internal/common"
	"github.com/lumenfin/pulse/internal/model"
)

// SaveAccounts inserts or updates the given accounts.
func (s *SQLiteStorage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (id, name, provider, account_type, currency, balance)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			provider = excluded.provider,
			account_type = excluded.account_type,
			currency = excluded.currency,
			balance = excluded.balance,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range accounts {
		a := &accounts[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid account %s: %w", a.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name, a.Provider, string(a.AccountType), a.Currency, a.Balance.String()); err != nil {
			return fmt.Errorf("failed to save account %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// GetAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, provider, account_type, currency, balance
		FROM accounts
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// GetAccountByID returns a single account.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, provider, account_type, currency, balance
		FROM accounts
		WHERE id = ?`, id)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	return account, err
}

// DeleteAccount removes an account. Its transactions keep their accountId
// reference; orphaned references are tolerated by the analysis core.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	var accountType, balance string
	if err := row.Scan(&a.ID, &a.Name, &a.Provider, &accountType, &a.Currency, &balance); err != nil {
		return nil, err
	}

	a.AccountType = model.AccountType(accountType)

	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %s: %w", a.ID, err)
	}
	a.Balance = parsed
	return &a, nil
}
