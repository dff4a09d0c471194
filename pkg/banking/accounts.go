package banking

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/ids"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// OpenAccountRequest describes a new account.
type OpenAccountRequest struct {
	Type     models.AccountType
	Currency string
	Metadata *models.AccountMetadata
}

// OpenAccount creates an active account with a zero balance and a freshly generated account number.
func (s *Service) OpenAccount(ctx context.Context, p auth.Principal, req OpenAccountRequest) (*models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", ErrValidation, req.Type)
	}
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	if !validCurrency(currency) {
		return nil, fmt.Errorf("%w: currency must be a three-letter ISO 4217 code", ErrValidation)
	}
	if err := validateMetadata(req.Metadata); err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.Account{
		Id:            ids.New(),
		UserId:        p.UserID,
		AccountNumber: ids.NewAccountNumber(),
		Type:          req.Type,
		Balance:       models.ZeroMoney,
		Currency:      currency,
		Status:        models.ACTIVE,
		Metadata:      req.Metadata,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to open account: %w", err)
	}

	s.metrics.IncAccountOpened()
	s.logger.InfoContext(ctx, "account opened", "account_id", created.Id, "user_id", p.UserID, "type", created.Type)
	return created, nil
}

// GetAccount returns one of the caller's accounts.
func (s *Service) GetAccount(ctx context.Context, p auth.Principal, accountID string) (*models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return s.ownedAccount(ctx, p, accountID)
}

// ListAccounts returns every account the caller owns, closed ones included.
func (s *Service) ListAccounts(ctx context.Context, p auth.Principal) ([]models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListAccountsByUserID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CloseAccount soft-deletes an account. Only an account with a zero balance can be closed.
func (s *Service) CloseAccount(ctx context.Context, p auth.Principal, accountID string) (*models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	var closed *models.Account
	err := s.withRetry(ctx, "close account", func() error {
		account, err := s.ownedAccount(ctx, p, accountID)
		if err != nil {
			return err
		}
		if account.Status == models.CLOSED {
			return fmt.Errorf("account %s is closed: %w", accountID, ErrAccountNotActive)
		}
		if !account.Balance.IsZero() {
			return fmt.Errorf("account %s holds %s: %w", accountID, account.Balance.Fixed(), ErrAccountHasBalance)
		}

		readVersion := account.Version
		now := s.now()
		account.Status = models.CLOSED
		account.ClosedAt = &now
		account.UpdatedAt = now
		account.Version = readVersion + 1

		if err := s.store.CloseAccount(ctx, account, readVersion); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				return err
			}
			return fmt.Errorf("failed to close account: %w", err)
		}
		closed = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAccountClosed()
	s.logger.InfoContext(ctx, "account closed", "account_id", accountID, "user_id", p.UserID)
	return closed, nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func validateMetadata(md *models.AccountMetadata) error {
	if md == nil {
		return nil
	}
	limits := map[string]*models.Money{
		"creditLimit":    md.CreditLimit,
		"interestRate":   md.InterestRate,
		"minimumBalance": md.MinimumBalance,
		"overdraftLimit": md.OverdraftLimit,
	}
	for name, v := range limits {
		if v == nil {
			continue
		}
		if !models.InBounds(v.Decimal) {
			return fmt.Errorf("%w: %s must not exceed %s", ErrValidation, name, models.MaxAmount.Fixed())
		}
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, name)
		}
		*v = models.NewMoney(v.Decimal)
	}
	return nil
}
