package analytics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestServerHealth(t *testing.T) {
	app := NewServer(Build(sampleTransactions(), 3))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestServerSummary(t *testing.T) {
	app := NewServer(Build(sampleTransactions(), 3))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Income       string          `json:"income"`
		Outcome      string          `json:"outcome"`
		Transactions int             `json:"transactions"`
		Categories   json.RawMessage `json:"categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Income != "5000" || body.Outcome != "1740.5" {
		t.Errorf("got income=%q outcome=%q", body.Income, body.Outcome)
	}
	if body.Transactions != 5 {
		t.Errorf("transactions = %d, want 5", body.Transactions)
	}
}

func TestServerPage(t *testing.T) {
	app := NewServer(Build(sampleTransactions(), 3))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(page), "Аналитика расходов") {
		t.Error("page body is missing the report title")
	}
}
