package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumenfin/pulse/internal/model"
	"github.com/lumenfin/pulse/internal/service"
)

// SaveTransactions inserts the given transactions, silently skipping
// duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (id, hash, date, description, amount, type, category, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		t := &transactions[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid transaction %s: %w", t.ID, err)
		}
		hash := t.Hash
		if hash == "" {
			hash = t.GenerateHash()
		}
		if _, err := stmt.ExecContext(ctx, t.ID, hash, t.Date, t.Description, t.Amount.String(), string(t.Type), t.Category, t.AccountID); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	query := `
		SELECT id, date, description, amount, type, category, account_id
		FROM transactions`

	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.AccountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, filter.AccountID)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date time.Time
		var amount, txType string
		if err := rows.Scan(&t.ID, &date, &t.Description, &amount, &txType, &t.Category, &t.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount for transaction %s: %w", t.ID, err)
		}
		t.Date = date
		t.Amount = parsed
		t.Type = model.TransactionType(txType)
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
