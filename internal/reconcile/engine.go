// Package reconcile maps normalized local records onto remote ledger
// operations: create-per-record for import, filter resolution and
// individual deletes for deletion.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/apetrov/zenimport/internal/logger"
	"github.com/apetrov/zenimport/internal/models"
)

// UnknownAccountError means the requested account title has no remote
// match. It is fatal before any write: the engine never guesses an account.
type UnknownAccountError struct {
	Name string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("no ledger account named %q", e.Name)
}

// Engine drives import and deletion against an injected Ledger.
type Engine struct {
	ledger Ledger
}

func NewEngine(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// ImportResult reports what an import run did (or previewed).
type ImportResult struct {
	Account models.Account
	// Records are the resolved records in original statement order.
	Records   []models.Transaction
	Created   int
	Previewed int
}

// Import creates one remote transaction per record on the named account.
// With dryRun the parsing and resolution path is identical but no remote
// writes are issued; the resolved records are returned as a preview.
//
// Import deliberately does not query the ledger for pre-existing matching
// transactions: re-importing the same statement twice creates duplicates.
// The batch itself is expected to be deduplicated already (normalize
// package); dry-run first is the recommended safeguard.
func (e *Engine) Import(ctx context.Context, records []models.Transaction, accountName string, dryRun bool) (*ImportResult, error) {
	log := logger.FromContext(ctx)

	account, err := e.resolveAccount(ctx, accountName)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Account: account}
	for _, tx := range records {
		if dryRun {
			result.Records = append(result.Records, tx)
			result.Previewed++
			continue
		}

		if _, err := e.ledger.CreateTransaction(ctx, account.ID, tx); err != nil {
			// A failed create aborts the run: the committed part stays,
			// re-running (after a dry-run inspection) is the retry path.
			return result, fmt.Errorf("creating %q (%s %s): %w",
				tx.Description, tx.ProcessedDate.Format("2006-01-02"), tx.Amount, err)
		}
		result.Records = append(result.Records, tx)
		result.Created++
	}

	log.Info().
		Str("account", account.Title).
		Int("created", result.Created).
		Int("previewed", result.Previewed).
		Bool("dry_run", dryRun).
		Msg("import finished")
	return result, nil
}

// DeleteResult summarizes a deletion batch. Individual failures do not
// abort the batch; they are reported here.
type DeleteResult struct {
	Matched   int
	Deleted   int
	FailedIDs []string
}

// Delete resolves the filter into the exact set of remote transactions and
// deletes them one by one. Account and date-range constraints combine with
// logical AND; All is the explicit opt-in for the unconditional mode and
// must not be combined with anything else.
func (e *Engine) Delete(ctx context.Context, filter models.DeletionFilter) (*DeleteResult, error) {
	log := logger.FromContext(ctx)

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	accountID := ""
	if filter.AccountName != "" {
		account, err := e.resolveAccount(ctx, filter.AccountName)
		if err != nil {
			return nil, err
		}
		accountID = account.ID
	}

	candidates, err := e.ledger.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	for _, t := range candidates {
		if !filter.All && !filter.MatchesDate(t.Date) {
			continue
		}
		result.Matched++

		if err := e.ledger.DeleteTransaction(ctx, t.ID); err != nil {
			log.Warn().Err(err).Str("id", t.ID).Msg("failed to delete transaction")
			result.FailedIDs = append(result.FailedIDs, t.ID)
			continue
		}
		result.Deleted++
	}

	log.Info().
		Int("matched", result.Matched).
		Int("deleted", result.Deleted).
		Int("failed", len(result.FailedIDs)).
		Msg("deletion finished")
	return result, nil
}

// resolveAccount matches an account title case-insensitively.
func (e *Engine) resolveAccount(ctx context.Context, name string) (models.Account, error) {
	accounts, err := e.ledger.ListAccounts(ctx)
	if err != nil {
		return models.Account{}, err
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Title, name) {
			return a, nil
		}
	}
	return models.Account{}, &UnknownAccountError{Name: name}
}
