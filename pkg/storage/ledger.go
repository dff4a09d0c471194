package storage

import (
	"context"
	"time"

	"github.com/chris/ethicalbank/pkg/models"
)

// EntryFilter narrows a ledger listing.
type EntryFilter struct {
	AccountID string
	Direction models.Direction
	Category  string
	Since     *time.Time
	Limit     int
	Skip      int
}

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// GetEntry retrieves a single ledger entry by its ID.
	GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error)

	// ListEntriesByUserID retrieves a user's ledger entries, newest first.
	ListEntriesByUserID(ctx context.Context, userID string, filter EntryFilter) ([]models.LedgerEntry, error)

	// ListEntriesByReference retrieves every entry sharing a reference (both legs of a transfer).
	ListEntriesByReference(ctx context.Context, reference string) ([]models.LedgerEntry, error)
}

// Posting is one account update paired with the ledger entry that explains it.
// Account carries the new balance; ReadVersion is the version the balance was computed from.
type Posting struct {
	Account     *models.Account
	ReadVersion int64
	Entry       *models.LedgerEntry
}

// LedgerWriter defines the privileged interface for mutating balances.
// Every call is all-or-nothing: either every posting is applied or none is.
type LedgerWriter interface {
	// ApplyPostings atomically writes the entries and account balances.
	// It returns ErrVersionConflict if any account changed since it was read.
	ApplyPostings(ctx context.Context, postings ...Posting) error
}

// LedgerStore combines the reader and writer interfaces.
type LedgerStore interface {
	AccountReader
	LedgerReader
	LedgerWriter
}
