// Package report turns ledger transactions into export rows and category
// aggregates.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/models"
)

const exportDateLayout = "2006-01-02"

// CSVWriter writes ledger transactions to CSV: one row per transaction,
// income and outcome in separate columns, `;` separated with a UTF-8 BOM
// so spreadsheet tools pick the encoding and delimiter up correctly.
type CSVWriter struct {
	// AccountTitles maps account ids to display names for the account column.
	AccountTitles map[string]string
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, transactions []models.RemoteTransaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, transactions)
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, transactions []models.RemoteTransaction) error {
	if _, err := out.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	writer.Comma = ';'
	defer writer.Flush()

	header := []string{"date", "income", "outcome", "amount", "currency", "comment", "payee", "category", "account", "id"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range transactions {
		income, outcome := "", ""
		if t.Income.IsPositive() {
			income = formatAmount(t.Income)
		}
		if t.Outcome.IsPositive() {
			outcome = formatAmount(t.Outcome)
		}

		row := []string{
			t.Date.Format(exportDateLayout),
			income,
			outcome,
			formatAmount(t.Amount().Abs()),
			t.Currency,
			t.Comment,
			t.Payee,
			t.Category,
			w.AccountTitles[t.AccountID],
			t.ID,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
