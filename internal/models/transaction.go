package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one canonical statement record, normalized to the
// "negative = money out of the account" sign convention.
type Transaction struct {
	Description string `json:"description"`
	// OperationTime is when the cardholder acted (date + time of day).
	OperationTime time.Time `json:"operationTime"`
	// ProcessedDate is when the bank posted the operation. It may differ
	// from OperationTime's date and is the date used for period filtering.
	ProcessedDate time.Time       `json:"processedDate"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	// OriginalAmount/OriginalCurrency are set when the statement prints a
	// foreign-currency amount next to the settled one.
	OriginalAmount   decimal.Decimal `json:"originalAmount,omitempty"`
	OriginalCurrency string          `json:"originalCurrency,omitempty"`
	CardSuffix       string          `json:"cardSuffix,omitempty"`
	Payee            string          `json:"payee,omitempty"`
	// AccountName is supplied by the caller, never parsed from text.
	AccountName string `json:"accountName,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// BankType represents supported bank statement formats.
type BankType string

const (
	BankYandex  BankType = "yandex"
	BankTinkoff BankType = "tinkoff"
)

// SkippedBlock records a statement block that failed to parse.
type SkippedBlock struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Statement holds everything recovered from one statement text.
type Statement struct {
	Bank         BankType
	Transactions []Transaction
	Skipped      []SkippedBlock
}

// Account is the ledger's view of an account. Read-only reference data.
type Account struct {
	ID       string
	Title    string
	Currency string
	Balance  decimal.Decimal
}

// RemoteTransaction is the ledger's view of a transaction. The importer
// never mutates one directly, it only issues create/delete intents.
type RemoteTransaction struct {
	ID        string
	AccountID string
	Income    decimal.Decimal
	Outcome   decimal.Decimal
	Currency  string
	Category  string
	Payee     string
	Comment   string
	Date      time.Time
}

// Amount returns the signed amount: income positive, outcome negative.
func (t RemoteTransaction) Amount() decimal.Decimal {
	if t.Income.IsPositive() {
		return t.Income
	}
	return t.Outcome.Neg()
}
