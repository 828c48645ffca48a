// Package zenmoney implements the remote ledger client on top of the
// ZenMoney v8 diff API.
package zenmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/config"
	"github.com/apetrov/zenimport/internal/logger"
	"github.com/apetrov/zenimport/internal/models"
)

const apiDateLayout = "2006-01-02"

// TransportError wraps a failed remote call with the operation that issued
// it. Transport failures are never retried here; re-running the command is
// the retry mechanism.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zenmoney %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the ZenMoney diff API. It fetches the full diff once per
// run and serves reference lookups (accounts, instruments, tags) from that
// snapshot. Not safe for concurrent use; commands are single-threaded.
type Client struct {
	token      string
	url        string
	httpClient *http.Client

	loaded          bool
	serverTimestamp int64
	userID          int
	accounts        []apiAccount
	instrumentCode  map[int]string
	instrumentID    map[string]int
	tagTitle        map[string]string
	transactions    map[string]apiTransaction
	order           []string
}

// NewClient builds a client from process configuration. The token is the
// only credential; it is passed explicitly, never read from the environment
// here.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		token:      cfg.Token,
		url:        cfg.APIURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ListAccounts returns all non-deleted accounts with their currency resolved.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		if a.Deleted {
			continue
		}
		accounts = append(accounts, models.Account{
			ID:       a.ID,
			Title:    a.Title,
			Currency: c.instrumentCode[a.Instrument],
			Balance:  decimal.NewFromFloat(a.Balance),
		})
	}
	return accounts, nil
}

// ListTransactions returns non-deleted remote transactions, scoped to one
// account when accountID is non-empty. The diff API has no server-side
// filtering, so scoping happens locally over the fetched snapshot.
func (c *Client) ListTransactions(ctx context.Context, accountID string) ([]models.RemoteTransaction, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []models.RemoteTransaction
	for _, id := range c.order {
		t := c.transactions[id]
		if accountID != "" && t.accountID() != accountID {
			continue
		}
		out = append(out, c.toRemote(t))
	}
	return out, nil
}

// CreateTransaction creates one transaction on the given account and
// returns the ledger's view of it.
func (c *Client) CreateTransaction(ctx context.Context, accountID string, tx models.Transaction) (models.RemoteTransaction, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return models.RemoteTransaction{}, err
	}

	instrument, err := c.accountInstrument(accountID)
	if err != nil {
		return models.RemoteTransaction{}, &TransportError{Op: "create", Err: err}
	}

	now := time.Now().Unix()
	api := apiTransaction{
		ID:                uuid.NewString(),
		Changed:           now,
		Created:           now,
		User:              c.userID,
		IncomeInstrument:  instrument,
		OutcomeInstrument: instrument,
		Tag:               []string{},
		Comment:           tx.Description,
		Date:              tx.ProcessedDate.Format(apiDateLayout),
	}
	if tx.Payee != "" {
		payee := tx.Payee
		api.Payee = &payee
	}

	amount, _ := tx.Amount.Abs().Round(2).Float64()
	if tx.Amount.IsPositive() {
		api.Income = amount
		api.IncomeAccount = &accountID
	} else {
		api.Outcome = amount
		api.OutcomeAccount = &accountID
	}

	// Keep the original-currency amount when the purchase was converted at
	// settlement and the instrument is known to the ledger.
	if tx.OriginalCurrency != "" && tx.OriginalCurrency != tx.Currency {
		if opInstrument, ok := c.instrumentID[tx.OriginalCurrency]; ok {
			opAmount, _ := tx.OriginalAmount.Abs().Round(2).Float64()
			if tx.Amount.IsPositive() {
				api.OpIncome = &opAmount
				api.OpIncomeInstrument = &opInstrument
			} else {
				api.OpOutcome = &opAmount
				api.OpOutcomeInstrument = &opInstrument
			}
		}
	}

	resp, err := c.post(ctx, diffRequest{
		CurrentClientTimestamp: now,
		ServerTimestamp:        c.serverTimestamp,
		Transaction:            []apiTransaction{api},
	})
	if err != nil {
		return models.RemoteTransaction{}, &TransportError{Op: "create", Err: err}
	}
	c.serverTimestamp = resp.ServerTimestamp

	log := logger.FromContext(ctx)
	log.Debug().
		Str("id", api.ID).
		Str("date", api.Date).
		Msg("created remote transaction")

	c.transactions[api.ID] = api
	c.order = append(c.order, api.ID)
	return c.toRemote(api), nil
}

// DeleteTransaction marks one remote transaction deleted. The diff API
// deletes by re-posting the full transaction object with deleted=true, so
// the id must exist in the fetched snapshot.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	t, ok := c.transactions[id]
	if !ok {
		return &TransportError{Op: "delete", Err: fmt.Errorf("transaction %s not present in ledger snapshot", id)}
	}

	now := time.Now().Unix()
	t.Deleted = true
	t.Changed = now

	resp, err := c.post(ctx, diffRequest{
		CurrentClientTimestamp: now,
		ServerTimestamp:        c.serverTimestamp,
		Transaction:            []apiTransaction{t},
	})
	if err != nil {
		return &TransportError{Op: "delete", Err: err}
	}
	c.serverTimestamp = resp.ServerTimestamp
	delete(c.transactions, id)

	log := logger.FromContext(ctx)
	log.Debug().Str("id", id).Msg("deleted remote transaction")
	return nil
}

// ensureLoaded fetches the diff snapshot on first use. Every run starts
// with a fresh snapshot; nothing persists across invocations.
func (c *Client) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	resp, err := c.post(ctx, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        0,
	})
	if err != nil {
		return &TransportError{Op: "fetch", Err: err}
	}

	c.serverTimestamp = resp.ServerTimestamp
	c.accounts = resp.Account
	c.userID = 1
	if len(resp.User) > 0 {
		c.userID = resp.User[0].ID
	}

	c.instrumentCode = make(map[int]string, len(resp.Instrument))
	c.instrumentID = make(map[string]int, len(resp.Instrument))
	for _, inst := range resp.Instrument {
		c.instrumentCode[inst.ID] = inst.ShortTitle
		c.instrumentID[inst.ShortTitle] = inst.ID
	}

	c.tagTitle = make(map[string]string, len(resp.Tag))
	for _, tag := range resp.Tag {
		c.tagTitle[tag.ID] = tag.Title
	}

	c.transactions = make(map[string]apiTransaction, len(resp.Transaction))
	c.order = c.order[:0]
	for _, t := range resp.Transaction {
		if t.Deleted {
			continue
		}
		c.transactions[t.ID] = t
		c.order = append(c.order, t.ID)
	}

	c.loaded = true
	log := logger.FromContext(ctx)
	log.Debug().
		Int("accounts", len(c.accounts)).
		Int("transactions", len(c.order)).
		Msg("fetched ledger snapshot")
	return nil
}

func (c *Client) accountInstrument(accountID string) (int, error) {
	for _, a := range c.accounts {
		if a.ID == accountID {
			return a.Instrument, nil
		}
	}
	return 0, fmt.Errorf("account %s not present in ledger snapshot", accountID)
}

func (c *Client) toRemote(t apiTransaction) models.RemoteTransaction {
	currency := c.instrumentCode[t.OutcomeInstrument]
	if t.Income > 0 {
		currency = c.instrumentCode[t.IncomeInstrument]
	}
	category := ""
	if len(t.Tag) > 0 {
		category = c.tagTitle[t.Tag[0]]
	}
	payee := ""
	if t.Payee != nil {
		payee = *t.Payee
	}
	date, _ := time.Parse(apiDateLayout, t.Date)

	return models.RemoteTransaction{
		ID:        t.ID,
		AccountID: t.accountID(),
		Income:    decimal.NewFromFloat(t.Income),
		Outcome:   decimal.NewFromFloat(t.Outcome),
		Currency:  currency,
		Category:  category,
		Payee:     payee,
		Comment:   t.Comment,
		Date:      date,
	}
}

func (c *Client) post(ctx context.Context, body diffRequest) (*diffResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}

	var diff diffResponse
	if err := json.NewDecoder(resp.Body).Decode(&diff); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &diff, nil
}
