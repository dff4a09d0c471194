package banking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500

	// SummaryPeriod is the window covered by Summary.
	SummaryPeriod = 30 * 24 * time.Hour
)

// ListRequest filters the caller's ledger. A zero Limit means DefaultListLimit.
type ListRequest struct {
	AccountID string
	Direction models.Direction
	Category  string
	Limit     int
	Skip      int
}

// Summary aggregates the caller's ledger over SummaryPeriod.
type Summary struct {
	Since             time.Time
	TotalTransactions int
	TotalDebited      models.Money
	TotalCredited     models.Money
	CategoryBreakdown map[string]models.Money
}

// GetTransaction returns one of the caller's ledger entries.
func (s *Service) GetTransaction(ctx context.Context, p auth.Principal, entryID string) (*models.LedgerEntry, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("transaction %s: %w", entryID, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if entry.UserId != p.UserID {
		return nil, fmt.Errorf("transaction %s: %w", entryID, ErrTransactionNotFound)
	}
	return entry, nil
}

// GetByReference returns the caller's entries carrying reference. For a transfer between two of the
// caller's own accounts that is both legs.
func (s *Service) GetByReference(ctx context.Context, p auth.Principal, reference string) ([]models.LedgerEntry, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntriesByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions by reference: %w", err)
	}

	owned := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.UserId == p.UserID {
			owned = append(owned, e)
		}
	}
	if len(owned) == 0 {
		return nil, fmt.Errorf("reference %s: %w", reference, ErrTransactionNotFound)
	}
	return owned, nil
}

// ListTransactions returns the caller's ledger entries, newest first.
func (s *Service) ListTransactions(ctx context.Context, p auth.Principal, req ListRequest) ([]models.LedgerEntry, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if req.Limit == 0 {
		req.Limit = DefaultListLimit
	}
	if req.Limit < 1 || req.Limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxListLimit)
	}
	if req.Skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", ErrValidation)
	}
	if req.Direction != "" && req.Direction != models.DEBIT && req.Direction != models.CREDIT {
		return nil, fmt.Errorf("%w: type must be 'debit' or 'credit'", ErrValidation)
	}
	if req.AccountID != "" {
		if _, err := s.ownedAccount(ctx, p, req.AccountID); err != nil {
			return nil, err
		}
	}

	entries, err := s.store.ListEntriesByUserID(ctx, p.UserID, storage.EntryFilter{
		AccountID: req.AccountID,
		Direction: req.Direction,
		Category:  req.Category,
		Limit:     req.Limit,
		Skip:      req.Skip,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return entries, nil
}

// Summary totals the caller's debits and credits over the last SummaryPeriod and breaks debits
// down by category.
func (s *Service) Summary(ctx context.Context, p auth.Principal) (*Summary, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	since := s.now().Add(-SummaryPeriod)
	entries, err := s.store.ListEntriesByUserID(ctx, p.UserID, storage.EntryFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for summary: %w", err)
	}

	debited, credited := decimal.Zero, decimal.Zero
	categories := make(map[string]decimal.Decimal)
	for _, e := range entries {
		switch e.Direction {
		case models.DEBIT:
			debited = debited.Add(e.Amount.Decimal)
			categories[e.Category] = categories[e.Category].Add(e.Amount.Decimal)
		case models.CREDIT:
			credited = credited.Add(e.Amount.Decimal)
		}
	}

	breakdown := make(map[string]models.Money, len(categories))
	for category, total := range categories {
		breakdown[category] = models.NewMoney(total)
	}

	return &Summary{
		Since:             since,
		TotalTransactions: len(entries),
		TotalDebited:      models.NewMoney(debited),
		TotalCredited:     models.NewMoney(credited),
		CategoryBreakdown: breakdown,
	}, nil
}
