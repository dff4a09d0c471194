package storage

import (
	"context"

	"github.com/chris/ethicalbank/pkg/models"
)

// AccountReader defines the interface for reading accounts.
type AccountReader interface {
	// GetAccount retrieves an account by its ID.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// ListAccountsByUserID retrieves every account owned by a user.
	ListAccountsByUserID(ctx context.Context, userID string) ([]models.Account, error)
}

// AccountManager defines the interface for creating and closing accounts.
type AccountManager interface {
	// CreateAccount stores a new account. The account number must be unique.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// CloseAccount persists a closed account, guarded by the version it was read at and a zero balance.
	CloseAccount(ctx context.Context, account *models.Account, readVersion int64) error
}

// AccountStore combines the reader and manager interfaces.
type AccountStore interface {
	AccountReader
	AccountManager
}
