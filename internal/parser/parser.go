package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apetrov/zenimport/internal/models"
)

// ErrUnrecognizedFormat is returned when a statement yields no transaction
// blocks at all. A statement without a single identifiable transaction
// almost always means a format we do not support, so this is reported
// rather than silently returning an empty result.
var ErrUnrecognizedFormat = errors.New("no transaction blocks recognized in statement text")

// MalformedRecordError describes one block that could not be parsed.
// It carries the offending raw text for diagnostics. The policy is
// skip-and-report: one bad block never aborts the whole statement.
type MalformedRecordError struct {
	Raw    string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	raw := e.Raw
	if len(raw) > 80 {
		raw = raw[:80] + "..."
	}
	return fmt.Sprintf("malformed record (%s): %q", e.Reason, raw)
}

// Parser defines the interface for bank statement grammars.
type Parser interface {
	// Parse takes the full extracted statement text and returns structured
	// statement data. Blocks that fail to parse are reported in
	// Statement.Skipped, not dropped silently.
	Parse(text string) (*models.Statement, error)
	// BankName returns the human-readable bank name.
	BankName() string
}

// New returns the appropriate parser for the given bank type.
func New(bankType models.BankType) (Parser, error) {
	switch bankType {
	case models.BankYandex:
		return &YandexParser{}, nil
	case models.BankTinkoff:
		return &TinkoffParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported bank type: %q", bankType)
	}
}

// AutoDetect tries to identify the bank from the statement text.
func AutoDetect(text string) (models.BankType, error) {
	if containsAny(text, []string{"Яндекс Банк", "Яндекс Пэй", "Yandex Bank", "yandex.ru"}) {
		return models.BankYandex, nil
	}
	if containsAny(text, []string{"Тинькофф", "Т-Банк", "ТБанк", "Tinkoff", "tinkoff.ru", "tbank.ru"}) {
		return models.BankTinkoff, nil
	}
	// The "DD.MM.YYYY в HH:MM" operation stamp is specific enough to fall
	// back on when no bank name survived text extraction.
	if opStampStrict.MatchString(text) {
		return models.BankYandex, nil
	}
	return "", fmt.Errorf("could not auto-detect bank from statement content; please specify --bank flag")
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
