// Package ofx parses OFX/QFX statement files into accounts and transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/lumenfin/pulse/internal/model"
)

// ImportResult holds everything extracted from a statement file.
type ImportResult struct {
	Accounts     []model.Account
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues seen in bank exports: leading
// whitespace before the header, mixed-case SEVERITY values, and SGML-style
// tags missing their closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses an OFX/QFX file and returns the accounts and
// transactions it contains.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	result := &ImportResult{}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		result.Accounts = append(result.Accounts, p.bankAccount(stmt))
		result.Transactions = append(result.Transactions, p.statementTransactions(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		result.Accounts = append(result.Accounts, p.creditAccount(stmt))
		result.Transactions = append(result.Transactions, p.statementTransactions(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
	}

	slog.Info("Parsed OFX file",
		"accounts", len(result.Accounts),
		"transactions", len(result.Transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return result, nil
}

func (p *Parser) bankAccount(stmt *ofxgo.StatementResponse) model.Account {
	id := string(stmt.BankAcctFrom.AcctID)
	accountType := model.AccountChecking
	if strings.EqualFold(stmt.BankAcctFrom.AcctType.String(), "SAVINGS") {
		accountType = model.AccountSavings
	}
	return model.Account{
		ID:          id,
		Name:        fmt.Sprintf("Imported %s", maskAccountID(id)),
		Provider:    "ofx",
		AccountType: accountType,
		Currency:    stmt.CurDef.String(),
		Balance:     decimal.NewFromBigRat(&stmt.BalAmt.Rat, 2),
	}
}

func (p *Parser) creditAccount(stmt *ofxgo.CCStatementResponse) model.Account {
	id := string(stmt.CCAcctFrom.AcctID)
	return model.Account{
		ID:          id,
		Name:        fmt.Sprintf("Imported %s", maskAccountID(id)),
		Provider:    "ofx",
		AccountType: model.AccountCredit,
		Currency:    stmt.CurDef.String(),
		// Credit statements report the amount owed as a negative ledger
		// balance; store the debt magnitude.
		Balance: decimal.NewFromBigRat(&stmt.BalAmt.Rat, 2).Abs(),
	}
}

func (p *Parser) statementTransactions(list *ofxgo.TransactionList, accountID string) []model.Transaction {
	if list == nil {
		return nil
	}

	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		transactions = append(transactions, p.convertTransaction(ofxTx, accountID))
	}
	return transactions
}

// convertTransaction maps an OFX transaction to the internal model. OFX
// signs amounts from the account holder's perspective: negative for money
// out, positive for money in.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	txType := model.TypeIncome
	if amount.IsNegative() {
		txType = model.TypeExpense
	}

	tx := model.Transaction{
		ID:          string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Description: p.describeTransaction(ofxTx),
		Amount:      amount.Abs(),
		Type:        txType,
		Category:    categoryForTrnType(ofxTx.TrnType.String()),
		AccountID:   accountID,
	}
	tx.Hash = tx.GenerateHash()
	return tx
}

// describeTransaction picks the most descriptive label available. PAYEE
// carries the cleanest merchant name; MEMO sometimes beats a generic NAME.
func (p *Parser) describeTransaction(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return name
}

// categoryForTrnType infers a coarse category from the OFX transaction
// type. OFX carries no real category data so most types map to nothing.
func categoryForTrnType(trnType string) string {
	switch trnType {
	case "INT":
		return "Interest"
	case "FEE", "SRVCHG":
		return "Bank Fees"
	case "ATM":
		return "Cash & ATM"
	default:
		return ""
	}
}

// isGenericDescription checks if a transaction name is too generic to be
// useful on its own.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// maskAccountID keeps only the last four characters of an account number
// for display names.
func maskAccountID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return "..." + id[len(id)-4:]
}
