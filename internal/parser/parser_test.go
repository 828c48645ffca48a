package parser

import (
	"errors"
	"testing"

	"github.com/apetrov/zenimport/internal/models"
)

func TestAutoDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.BankType
		wantErr  bool
	}{
		{
			name:     "detects Yandex Bank",
			text:     "Яндекс Банк\nВыписка по счёту\n01.07.2025 в 08:16",
			expected: models.BankYandex,
		},
		{
			name:     "detects T-Bank",
			text:     "АО «Тинькофф Банк»\nСправка о движении средств",
			expected: models.BankTinkoff,
		},
		{
			name:     "detects T-Bank by new brand name",
			text:     "Т-Банк\nСправка о движении средств",
			expected: models.BankTinkoff,
		},
		{
			name:     "falls back to Yandex on operation stamp",
			text:     "Оплата товаров и услуг 01.07.2025 в 08:16 02.07.2025",
			expected: models.BankYandex,
		},
		{
			name:    "unknown statement returns error",
			text:    "Some Unknown Bank\nStatement",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AutoDetect(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		bankType models.BankType
		wantName string
		wantErr  bool
	}{
		{models.BankYandex, "Yandex Bank", false},
		{models.BankTinkoff, "T-Bank", false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.bankType), func(t *testing.T) {
			p, err := New(tt.bankType)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.BankName() != tt.wantName {
				t.Errorf("got %q, want %q", p.BankName(), tt.wantName)
			}
		})
	}
}

func TestParseUnrecognizedFormat(t *testing.T) {
	for _, bank := range []models.BankType{models.BankYandex, models.BankTinkoff} {
		t.Run(string(bank), func(t *testing.T) {
			p, err := New(bank)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = p.Parse("Счёт-фактура №42\nИтого к оплате: много")
			if !errors.Is(err, ErrUnrecognizedFormat) {
				t.Errorf("expected ErrUnrecognizedFormat, got %v", err)
			}
		})
	}
}
