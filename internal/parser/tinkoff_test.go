package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const tinkoffStatement = `Т-Банк
Справка о движении средств за период 01.07.2025 — 31.07.2025
Дата операции Дата списания Номер карты Описание операции Сумма операции Сумма в валюте карты
01.07.2025 09:15 02.07.2025 *4321 −4,50 ₽ −4,50 ₽ Кофейня COFFEE POINT
15.07.2025 10:00 15.07.2025 +100 000,00 ₽ +100 000,00 ₽ Пополнение. Перевод с карты
Итого пополнений: 100 000,00 ₽`

func TestTinkoffParse(t *testing.T) {
	p := &TinkoffParser{}
	stmt, err := p.Parse(tinkoffStatement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmt.Skipped) != 0 {
		t.Fatalf("expected no skipped blocks, got %+v", stmt.Skipped)
	}
	if len(stmt.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(stmt.Transactions))
	}

	first := stmt.Transactions[0]
	if first.Description != "Кофейня COFFEE POINT" {
		t.Errorf("unexpected description %q", first.Description)
	}
	if !first.Amount.Equal(decimal.RequireFromString("-4.5")) {
		t.Errorf("unexpected amount %s", first.Amount)
	}
	if first.CardSuffix != "4321" {
		t.Errorf("unexpected card suffix %q", first.CardSuffix)
	}
	wantOp := time.Date(2025, 7, 1, 9, 15, 0, 0, time.UTC)
	if !first.OperationTime.Equal(wantOp) {
		t.Errorf("operation time: got %v, want %v", first.OperationTime, wantOp)
	}
	wantProc := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	if !first.ProcessedDate.Equal(wantProc) {
		t.Errorf("processed date: got %v, want %v", first.ProcessedDate, wantProc)
	}

	second := stmt.Transactions[1]
	if second.Description != "Пополнение. Перевод с карты" {
		t.Errorf("unexpected description %q", second.Description)
	}
	if !second.Amount.Equal(decimal.RequireFromString("100000")) {
		t.Errorf("unexpected amount %s", second.Amount)
	}
	if second.CardSuffix != "" {
		t.Errorf("expected no card suffix, got %q", second.CardSuffix)
	}
}
