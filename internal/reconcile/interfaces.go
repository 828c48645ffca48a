package reconcile

import (
	"context"

	"github.com/apetrov/zenimport/internal/models"
)

// Ledger defines the remote personal-finance ledger operations the engine
// needs. The ZenMoney client implements it; tests use an in-memory fake.
type Ledger interface {
	// ListAccounts returns the ledger's accounts. Reference data; fetched
	// fresh every run.
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// ListTransactions returns remote transactions, scoped to one account
	// when accountID is non-empty.
	ListTransactions(ctx context.Context, accountID string) ([]models.RemoteTransaction, error)

	// CreateTransaction creates one transaction on the given account.
	CreateTransaction(ctx context.Context, accountID string, tx models.Transaction) (models.RemoteTransaction, error)

	// DeleteTransaction removes one transaction by its remote id.
	DeleteTransaction(ctx context.Context, id string) error
}
