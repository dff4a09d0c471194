// Package banking owns accounts and the ledger. Every balance change goes through a
// read, validate, compare-and-swap cycle so concurrent requests never lose an update.
package banking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/events"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
)

// DefaultCurrency is used when an account is opened without one.
const DefaultCurrency = "INR"

// Store is the persistence the service needs.
type Store interface {
	storage.AccountStore
	storage.LedgerStore
}

// Service implements account management and the balance-mutation routine.
type Service struct {
	store       Store
	publisher   events.Publisher
	metrics     *Metrics
	logger      *slog.Logger
	maxAttempts int
	now         func() time.Time
}

// NewService creates a new Service. metrics may be nil; a nil publisher disables events.
func NewService(store Store, publisher events.Publisher, metrics *Metrics, logger *slog.Logger, maxAttempts int) *Service {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		store:       store,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// withRetry runs attempt until it succeeds, fails for a reason other than a version conflict,
// or runs out of attempts.
func (s *Service) withRetry(ctx context.Context, op string, attempt func() error) error {
	for i := 1; ; i++ {
		err := attempt()
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		if i >= s.maxAttempts {
			s.logger.WarnContext(ctx, "giving up after concurrent updates", "operation", op, "attempts", i)
			return fmt.Errorf("%s: %w", op, ErrConcurrentUpdate)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		s.metrics.IncRetry()
		s.logger.DebugContext(ctx, "retrying after concurrent update", "operation", op, "attempt", i)
	}
}

// ownedAccount loads an account and hides accounts that belong to someone else.
func (s *Service) ownedAccount(ctx context.Context, p auth.Principal, accountID string) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.UserId != p.UserID {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
	}
	return account, nil
}

func (s *Service) publish(ctx context.Context, evts ...events.Event) {
	if err := s.publisher.Publish(ctx, evts...); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish events", "error", err, "count", len(evts))
	}
}

func requirePrincipal(p auth.Principal) error {
	if p.UserID == "" {
		return auth.ErrUnauthenticated
	}
	return nil
}
