package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/apetrov/zenimport/internal/models"
	"github.com/shopspring/decimal"
)

const (
	dateLayout   = "02.01.2006"
	opTimeLayout = "02.01.2006 15:04"
)

// signedAmountPattern matches one signed monetary amount with its currency
// marker, e.g. "+1 200,00 ₽", "-4.50 RUB", "– 15 000 ₽". The sign accepts
// the en-dash and the Unicode minus that PDF extractors produce instead of
// a plain hyphen. The currency marker anchors the match so that dates and
// card numbers are never mistaken for amounts.
var signedAmountPattern = regexp.MustCompile(
	`([+\-–−])\s*(\d[\d\s\x{00A0}]*(?:[.,]\d{1,2})?)\s*(₽|руб\.?|RUB|USD|EUR|GBP|KZT|\$|€|£)`,
)

// signedAmount is one raw amount occurrence before normalization.
type signedAmount struct {
	Value    decimal.Decimal
	Currency string
}

// findAmounts extracts every signed amount from the given text, in order.
func findAmounts(text string) ([]signedAmount, error) {
	matches := signedAmountPattern.FindAllStringSubmatch(text, -1)
	amounts := make([]signedAmount, 0, len(matches))
	for _, m := range matches {
		value, err := parseAmount(m[1], m[2])
		if err != nil {
			return nil, err
		}
		amounts = append(amounts, signedAmount{
			Value:    value,
			Currency: currencyCode(m[3]),
		})
	}
	return amounts, nil
}

// parseAmount converts a sign marker and a digit group like "1 200,00"
// into a signed decimal. Thousands are separated by regular or non-breaking
// spaces, the decimal mark may be a comma or a period.
func parseAmount(sign, digits string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', '\t', '\n', '\r':
			return -1
		case ',':
			return '.'
		}
		return r
	}, digits)

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot parse amount %q: %w", digits, err)
	}
	if sign != "+" {
		value = value.Neg()
	}
	return value, nil
}

// currencyCode maps a statement currency marker to an ISO-4217 code.
func currencyCode(marker string) string {
	switch marker {
	case "₽", "руб", "руб.":
		return "RUB"
	case "$":
		return "USD"
	case "€":
		return "EUR"
	case "£":
		return "GBP"
	default:
		return strings.ToUpper(marker)
	}
}

// parseOpTime parses the operation stamp captures into a timezone-naive
// timestamp (stored as UTC).
func parseOpTime(date, clock string) (time.Time, error) {
	return time.Parse(opTimeLayout, date+" "+clock)
}

// parseDate parses a DD.MM.YYYY processing date.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// collapseSpaces trims and collapses all runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// processingDatePattern finds the posted/settled date that follows the
// operation stamp.
var processingDatePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// cardSuffixPattern finds a masked card number like "*1234" or "*55551".
var cardSuffixPattern = regexp.MustCompile(`\*(\d{4,5})`)

// extractProcessingDate finds the posted date that follows the operation
// stamp.
func extractProcessingDate(tail string) (time.Time, *MalformedRecordError) {
	m := processingDatePattern.FindString(tail)
	if m == "" {
		return time.Time{}, &MalformedRecordError{Reason: "missing processing date"}
	}
	date, err := parseDate(m)
	if err != nil {
		return time.Time{}, &MalformedRecordError{Reason: "invalid processing date"}
	}
	return date, nil
}

// extractCardSuffix finds the masked card number near the amounts and
// returns its last four digits, or "" when the statement omits the card.
func extractCardSuffix(tail string) string {
	m := cardSuffixPattern.FindStringSubmatch(tail)
	if m == nil {
		return ""
	}
	digits := m[1]
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits
}

// applyAmounts fills the transaction's settled amount and currency from
// the amounts printed in the block. When the record carries two amounts in
// different currencies (foreign purchase converted at settlement), the
// original amount is kept alongside the settled one.
func applyAmounts(tx *models.Transaction, amounts []signedAmount) {
	settled := amounts[len(amounts)-1]
	tx.Amount = settled.Value
	tx.Currency = settled.Currency
	if len(amounts) >= 2 && amounts[0].Currency != settled.Currency {
		tx.OriginalAmount = amounts[0].Value
		tx.OriginalCurrency = amounts[0].Currency
	}
}
