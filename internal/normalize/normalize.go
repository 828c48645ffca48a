// Package normalize canonicalizes parsed statement records and removes
// duplicates arising from repeated page content. Everything here is a pure
// function of its inputs: no remote calls, no clock, no global state.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/apetrov/zenimport/internal/models"
)

// payeePatterns extract the counterparty from well-known description
// shapes: incoming/outgoing СБП transfers and merchant payments.
var payeePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Входящий перевод СБП, ([^,]+)`),
	regexp.MustCompile(`Исходящий перевод СБП, ([^,]+)`),
	regexp.MustCompile(`Оплата товаров и услуг ([A-Z_0-9]+)`),
}

// Normalize canonicalizes a batch of parsed records for the given account:
// descriptions are trimmed, the currency is defaulted, the payee is derived
// where the description allows it, and the dedup fingerprint is computed.
// Order is preserved.
func Normalize(records []models.Transaction, accountName, defaultCurrency string) []models.Transaction {
	out := make([]models.Transaction, 0, len(records))
	for _, tx := range records {
		tx.Description = strings.TrimSpace(tx.Description)
		if tx.Currency == "" {
			tx.Currency = defaultCurrency
		}
		if tx.Payee == "" {
			tx.Payee = extractPayee(tx.Description)
		}
		tx.AccountName = accountName
		tx.Fingerprint = Fingerprint(tx)
		out = append(out, tx)
	}
	return out
}

// Fingerprint derives the stable identity of a record. It is deterministic
// over the account name, operation time, amount and description, so
// re-parsing the same statement always yields the same value.
func Fingerprint(tx models.Transaction) string {
	h := sha256.New()
	h.Write([]byte(tx.AccountName))
	h.Write([]byte{0})
	h.Write([]byte(tx.OperationTime.Format(time.RFC3339)))
	h.Write([]byte{0})
	h.Write([]byte(tx.Amount.String()))
	h.Write([]byte{0})
	h.Write([]byte(tx.Description))
	return hex.EncodeToString(h.Sum(nil))
}

// Deduplicate drops records whose fingerprint was already seen in this
// batch. The first occurrence wins and relative order is preserved, so the
// function is idempotent. Records without a fingerprint are passed through
// untouched. Deduplication against the remote ledger is deliberately not
// done here: remote-side duplicates may exist outside this tool's control
// and are the reconciliation engine's concern.
func Deduplicate(records []models.Transaction) []models.Transaction {
	seen := make(map[string]bool, len(records))
	out := make([]models.Transaction, 0, len(records))
	for _, tx := range records {
		if tx.Fingerprint != "" && seen[tx.Fingerprint] {
			continue
		}
		if tx.Fingerprint != "" {
			seen[tx.Fingerprint] = true
		}
		out = append(out, tx)
	}
	return out
}

func extractPayee(description string) string {
	for _, re := range payeePatterns {
		if m := re.FindStringSubmatch(description); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
