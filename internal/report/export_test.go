package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/models"
)

func TestCSVWrite(t *testing.T) {
	w := &CSVWriter{AccountTitles: map[string]string{"acc-1": "Yandex Bank"}}
	txs := []models.RemoteTransaction{
		{
			ID:        "t1",
			AccountID: "acc-1",
			Outcome:   decimal.RequireFromString("1200.5"),
			Currency:  "RUB",
			Comment:   "Оплата товаров и услуг YANDEX_EDA",
			Payee:     "YANDEX_EDA",
			Category:  "Еда",
			Date:      time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "t2",
			AccountID: "acc-1",
			Income:    decimal.RequireFromString("5000"),
			Currency:  "RUB",
			Date:      time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, txs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Error("output must start with a UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\xEF\xBB\xBF"), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "date;income;outcome;amount;currency;comment;payee;category;account;id" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "2025-07-02;;1200.50;1200.50;RUB;Оплата товаров и услуг YANDEX_EDA;YANDEX_EDA;Еда;Yandex Bank;t1" {
		t.Errorf("unexpected outcome row %q", lines[1])
	}
	if lines[2] != "2025-07-03;5000.00;;5000.00;RUB;;;;Yandex Bank;t2" {
		t.Errorf("unexpected income row %q", lines[2])
	}
}

func TestCSVWriteEmpty(t *testing.T) {
	w := &CSVWriter{}

	var buf bytes.Buffer
	if err := w.Write(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")), "\n")
	if len(lines) != 1 {
		t.Errorf("empty export must still carry the header, got %d lines", len(lines))
	}
}
