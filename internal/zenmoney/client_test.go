package zenmoney

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/config"
	"github.com/apetrov/zenimport/internal/models"
)

// diffStub is a minimal in-memory diff endpoint: it serves a fixed
// snapshot and records every posted mutation.
type diffStub struct {
	t        *testing.T
	snapshot diffResponse
	posted   []apiTransaction
	auth     string
}

func (s *diffStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth = r.Header.Get("Authorization")

		var req diffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.t.Errorf("bad request body: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.posted = append(s.posted, req.Transaction...)

		resp := s.snapshot
		resp.ServerTimestamp = time.Now().Unix()
		if req.ServerTimestamp != 0 {
			// Mutation calls get a diff without the full snapshot back.
			resp = diffResponse{ServerTimestamp: resp.ServerTimestamp}
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			s.t.Errorf("failed to encode response: %v", err)
		}
	}
}

func strPtr(s string) *string { return &s }

func newStub(t *testing.T) *diffStub {
	return &diffStub{
		t: t,
		snapshot: diffResponse{
			ServerTimestamp: 100,
			Account: []apiAccount{
				{ID: "acc-1", Title: "Yandex Bank", Instrument: 2, Balance: 1500.25},
				{ID: "acc-old", Title: "Closed", Instrument: 2, Deleted: true},
			},
			Instrument: []apiInstrument{
				{ID: 1, Title: "US Dollar", ShortTitle: "USD"},
				{ID: 2, Title: "Российский рубль", ShortTitle: "RUB"},
			},
			User: []apiUser{{ID: 42}},
			Tag:  []apiTag{{ID: "tag-food", Title: "Еда"}},
			Transaction: []apiTransaction{
				{
					ID:             "t1",
					User:           42,
					OutcomeAccount: strPtr("acc-1"),
					Outcome:        1200.50,
					IncomeAccount:  strPtr(""),
					Tag:            []string{"tag-food"},
					Comment:        "Оплата товаров и услуг YANDEX_EDA",
					Date:           "2025-07-02",
				},
				{ID: "t-gone", Deleted: true, Date: "2025-01-01"},
			},
		},
	}
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&config.Config{Token: "test-token", APIURL: server.URL, Currency: "RUB"})
}

func TestListAccounts(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	accounts, err := newTestClient(server).ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want deleted accounts filtered out", len(accounts))
	}
	a := accounts[0]
	if a.ID != "acc-1" || a.Title != "Yandex Bank" || a.Currency != "RUB" {
		t.Errorf("unexpected account %+v", a)
	}
	if !a.Balance.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("balance = %s, want 1500.25", a.Balance)
	}
	if stub.auth != "Bearer test-token" {
		t.Errorf("authorization header = %q", stub.auth)
	}
}

func TestListTransactions(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	txs, err := newTestClient(server).ListTransactions(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want deleted ones filtered out", len(txs))
	}
	tx := txs[0]
	if tx.ID != "t1" || tx.Category != "Еда" || tx.Currency != "RUB" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if !tx.Outcome.Equal(decimal.RequireFromString("1200.5")) {
		t.Errorf("outcome = %s, want 1200.5", tx.Outcome)
	}
	if !tx.Date.Equal(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %s", tx.Date)
	}
}

func TestCreateTransaction(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server)
	created, err := client.CreateTransaction(context.Background(), "acc-1", models.Transaction{
		Description:   "Coffee Shop",
		Payee:         "COFFEE POINT",
		OperationTime: time.Date(2025, 7, 1, 9, 15, 0, 0, time.UTC),
		ProcessedDate: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("-4.50"),
		Currency:      "RUB",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.posted) != 1 {
		t.Fatalf("got %d posted transactions, want 1", len(stub.posted))
	}
	posted := stub.posted[0]
	if posted.ID == "" {
		t.Error("created transaction must carry a generated id")
	}
	if posted.Outcome != 4.5 || posted.Income != 0 {
		t.Errorf("got income=%v outcome=%v, want the negative amount as outcome", posted.Income, posted.Outcome)
	}
	if posted.OutcomeAccount == nil || *posted.OutcomeAccount != "acc-1" {
		t.Error("outcome account not set")
	}
	if posted.User != 42 {
		t.Errorf("user = %d, want the snapshot user", posted.User)
	}
	if posted.Date != "2025-07-02" {
		t.Errorf("date = %q, want the processed date", posted.Date)
	}
	if posted.Comment != "Coffee Shop" {
		t.Errorf("comment = %q", posted.Comment)
	}
	if created.ID != posted.ID {
		t.Error("returned transaction must mirror the posted one")
	}

	// The created transaction is visible in subsequent listings.
	txs, err := client.ListTransactions(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("got %d transactions after create, want 2", len(txs))
	}
}

func TestCreateTransactionForeignCurrency(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	_, err := newTestClient(server).CreateTransaction(context.Background(), "acc-1", models.Transaction{
		Description:      "Оплата товаров и услуг AMAZON",
		ProcessedDate:    time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC),
		Amount:           decimal.RequireFromString("-950"),
		Currency:         "RUB",
		OriginalAmount:   decimal.RequireFromString("-10"),
		OriginalCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posted := stub.posted[0]
	if posted.OpOutcome == nil || *posted.OpOutcome != 10 {
		t.Fatal("original-currency outcome not set")
	}
	if posted.OpOutcomeInstrument == nil || *posted.OpOutcomeInstrument != 1 {
		t.Error("original-currency instrument not resolved")
	}
}

func TestDeleteTransaction(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server)
	if err := client.DeleteTransaction(context.Background(), "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.posted) != 1 {
		t.Fatalf("got %d posted transactions, want 1", len(stub.posted))
	}
	posted := stub.posted[0]
	if posted.ID != "t1" || !posted.Deleted {
		t.Errorf("expected t1 re-posted with deleted=true, got %+v", posted)
	}
	if posted.Comment != "Оплата товаров и услуг YANDEX_EDA" {
		t.Error("deletion must re-post the full original object")
	}

	txs, err := client.ListTransactions(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions after delete, want 0", len(txs))
	}
}

func TestDeleteTransactionUnknownID(t *testing.T) {
	stub := newStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	err := newTestClient(server).DeleteTransaction(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("expected an error for an id outside the snapshot")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if transportErr.Op != "delete" {
		t.Errorf("op = %q, want delete", transportErr.Op)
	}
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server).ListAccounts(context.Background())
	if err == nil {
		t.Fatal("expected an error on a 401 response")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T", err)
	}
	if transportErr.Op != "fetch" {
		t.Errorf("op = %q, want fetch", transportErr.Op)
	}
}
