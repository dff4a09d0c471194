package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/ids"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCategory is recorded when a posting does not name one.
	DefaultCategory = "other"
	// TransferCategory is the default category of both transfer legs.
	TransferCategory = "transfer"

	maxDescriptionLength = 500
)

// PostRequest is a single credit or debit against one account.
type PostRequest struct {
	AccountID   string
	Direction   models.Direction
	Amount      decimal.Decimal
	Currency    string
	Description string
	Category    string
}

// PostResult is the entry that was written and the account as it stands afterwards.
type PostResult struct {
	Entry   models.LedgerEntry
	Account models.Account
}

// TransferRequest moves money between two accounts. The destination may belong to another user.
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Category      string
}

// TransferResult holds both legs of a transfer. They share Reference.
type TransferResult struct {
	Reference   string
	Debit       models.LedgerEntry
	Credit      models.LedgerEntry
	FromAccount models.Account
	ToAccount   models.Account
}

// EntryPostedData is the payload of an EntryPosted event.
type EntryPostedData struct {
	EntryId      string           `json:"entry_id"`
	AccountId    string           `json:"account_id"`
	Direction    models.Direction `json:"direction"`
	Amount       string           `json:"amount"`
	Currency     string           `json:"currency"`
	BalanceAfter string           `json:"balance_after"`
	Reference    string           `json:"reference"`
}

// PostTransaction applies a credit or debit to one of the caller's accounts.
func (s *Service) PostTransaction(ctx context.Context, p auth.Principal, req PostRequest) (*PostResult, error) {
	result, err := s.postTransaction(ctx, p, req)
	s.metrics.IncPosting(string(req.Direction), err)
	return result, err
}

func (s *Service) postTransaction(ctx context.Context, p auth.Principal, req PostRequest) (*PostResult, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, fmt.Errorf("%w: accountId is required", ErrValidation)
	}
	if req.Direction != models.DEBIT && req.Direction != models.CREDIT {
		return nil, fmt.Errorf("%w: type must be 'debit' or 'credit'", ErrValidation)
	}
	amount, err := validateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	description, category, err := validateText(req.Description, req.Category, DefaultCategory)
	if err != nil {
		return nil, err
	}

	reference := ids.NewReference(ids.TransactionPrefix)
	var result PostResult
	err = s.withRetry(ctx, "post transaction", func() error {
		account, err := s.ownedAccount(ctx, p, req.AccountID)
		if err != nil {
			return err
		}
		if req.Currency != "" && req.Currency != account.Currency {
			return fmt.Errorf("account %s holds %s, not %s: %w", account.Id, account.Currency, req.Currency, ErrCurrencyMismatch)
		}

		readVersion := account.Version
		if err := s.apply(account, req.Direction, amount); err != nil {
			return err
		}

		entry := s.newEntry(account, req.Direction, amount, description, category, reference)
		if err := s.store.ApplyPostings(ctx, storage.Posting{Account: account, ReadVersion: readVersion, Entry: entry}); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to apply posting: %w", err)
		}

		result = PostResult{Entry: *entry, Account: *account}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "transaction posted",
		"entry_id", result.Entry.EntryId,
		"account_id", result.Account.Id,
		"direction", result.Entry.Direction,
		"amount", result.Entry.Amount.Fixed(),
		"reference", reference,
	)
	s.publish(ctx, entryPostedEvent(&result.Entry))
	return &result, nil
}

// Transfer debits the source and credits the destination in a single atomic write.
func (s *Service) Transfer(ctx context.Context, p auth.Principal, req TransferRequest) (*TransferResult, error) {
	result, err := s.transfer(ctx, p, req)
	s.metrics.IncTransfer(err)
	return result, err
}

func (s *Service) transfer(ctx context.Context, p auth.Principal, req TransferRequest) (*TransferResult, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FromAccountID) == "" || strings.TrimSpace(req.ToAccountID) == "" {
		return nil, fmt.Errorf("%w: fromAccountId and toAccountId are required", ErrValidation)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccount
	}
	amount, err := validateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	description, category, err := validateText(req.Description, req.Category, TransferCategory)
	if err != nil {
		return nil, err
	}

	reference := ids.NewReference(ids.TransferPrefix)
	var result TransferResult
	err = s.withRetry(ctx, "transfer", func() error {
		from, err := s.ownedAccount(ctx, p, req.FromAccountID)
		if err != nil {
			return err
		}
		to, err := s.store.GetAccount(ctx, req.ToAccountID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("destination account %s: %w", req.ToAccountID, ErrAccountNotFound)
			}
			return fmt.Errorf("failed to load destination account: %w", err)
		}
		if from.Currency != to.Currency {
			return fmt.Errorf("cannot transfer %s to %s: %w", from.Currency, to.Currency, ErrCurrencyMismatch)
		}

		fromVersion, toVersion := from.Version, to.Version
		if err := s.apply(from, models.DEBIT, amount); err != nil {
			return err
		}
		if err := s.apply(to, models.CREDIT, amount); err != nil {
			return err
		}

		debit := s.newEntry(from, models.DEBIT, amount, description, category, reference)
		debit.Transfer = &models.TransferMetadata{CounterpartyAccountId: to.Id, CounterpartyAccountNumber: to.AccountNumber}
		credit := s.newEntry(to, models.CREDIT, amount, description, category, reference)
		credit.Transfer = &models.TransferMetadata{CounterpartyAccountId: from.Id, CounterpartyAccountNumber: from.AccountNumber}

		err = s.store.ApplyPostings(ctx,
			storage.Posting{Account: from, ReadVersion: fromVersion, Entry: debit},
			storage.Posting{Account: to, ReadVersion: toVersion, Entry: credit},
		)
		if err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to apply transfer: %w", err)
		}

		result = TransferResult{
			Reference:   reference,
			Debit:       *debit,
			Credit:      *credit,
			FromAccount: *from,
			ToAccount:   *to,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer completed",
		"reference", reference,
		"from_account_id", result.FromAccount.Id,
		"to_account_id", result.ToAccount.Id,
		"amount", amount.Fixed(),
	)
	s.publish(ctx, entryPostedEvent(&result.Debit), entryPostedEvent(&result.Credit))
	return &result, nil
}

// apply checks that the account can take the mutation and updates it in memory.
func (s *Service) apply(account *models.Account, direction models.Direction, amount models.Money) error {
	if account.Status != models.ACTIVE {
		return fmt.Errorf("account %s is %s: %w", account.Id, account.Status, ErrAccountNotActive)
	}

	var balance decimal.Decimal
	if direction == models.CREDIT {
		balance = account.Balance.Add(amount.Decimal)
	} else {
		available := account.Balance.Sub(debitFloor(account))
		if available.LessThan(amount.Decimal) {
			return fmt.Errorf("account %s has %s available: %w", account.Id, models.NewMoney(available).Fixed(), ErrInsufficientFunds)
		}
		balance = account.Balance.Sub(amount.Decimal)
	}

	account.Balance = models.NewMoney(balance)
	account.Version++
	account.UpdatedAt = s.now()
	return nil
}

// debitFloor is the lowest balance a debit may leave: the minimum balance less any headroom.
func debitFloor(account *models.Account) decimal.Decimal {
	floor := decimal.Zero
	if account.Metadata != nil && account.Metadata.MinimumBalance != nil {
		floor = account.Metadata.MinimumBalance.Decimal
	}
	return floor.Sub(account.Headroom().Decimal)
}

func (s *Service) newEntry(account *models.Account, direction models.Direction, amount models.Money, description, category, reference string) *models.LedgerEntry {
	return &models.LedgerEntry{
		EntryId:      ids.New(),
		AccountId:    account.Id,
		UserId:       account.UserId,
		Direction:    direction,
		Amount:       amount,
		Currency:     account.Currency,
		Description:  description,
		Category:     category,
		Reference:    reference,
		BalanceAfter: account.Balance,
		Status:       models.COMPLETED,
		CreatedAt:    account.UpdatedAt,
	}
}

func entryPostedEvent(e *models.LedgerEntry) events.Event {
	return events.New(events.EntryPosted, e.UserId, EntryPostedData{
		EntryId:      e.EntryId,
		AccountId:    e.AccountId,
		Direction:    e.Direction,
		Amount:       e.Amount.Fixed(),
		Currency:     e.Currency,
		BalanceAfter: e.BalanceAfter.Fixed(),
		Reference:    e.Reference,
	})
}

// validateAmount rejects non-positive amounts, including ones that round to zero cents,
// and anything above models.MaxAmount.
func validateAmount(amount decimal.Decimal) (models.Money, error) {
	if !models.InBounds(amount) {
		return models.Money{}, fmt.Errorf("%w: amount must not exceed %s", ErrValidation, models.MaxAmount.Fixed())
	}
	m := models.NewMoney(amount)
	if !m.IsPositive() {
		return models.Money{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return m, nil
}

func validateText(description, category, defaultCategory string) (string, string, error) {
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		return "", "", fmt.Errorf("%w: description must be at most %d characters", ErrValidation, maxDescriptionLength)
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = defaultCategory
	}
	return description, category, nil
}
