package banking

import (
	"context"
	"errors"
	"testing"

	"github.com/chris/ethicalbank/pkg/events"
	eventmocks "github.com/chris/ethicalbank/pkg/events/mocks"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/chris/ethicalbank/pkg/storage/mocks"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPostTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Debit", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "3247.89")))
		store.On("ApplyPostings", mock.Anything, mock.MatchedBy(func(p storage.Posting) bool {
			return p.ReadVersion == 4 &&
				p.Account.Version == 5 &&
				p.Account.Balance.Fixed() == "3160.46" &&
				p.Entry.BalanceAfter.Fixed() == "3160.46" &&
				p.Entry.Amount.Fixed() == "87.43" &&
				p.Entry.Direction == models.DEBIT
		})).Return(nil)

		result, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID:   "acc1",
			Direction:   models.DEBIT,
			Amount:      decimal.RequireFromString("87.43"),
			Description: "Grocery Store",
			Category:    "Groceries",
		})

		require.NoError(t, err)
		assert.Equal(t, "3160.46", result.Account.Balance.Fixed())
		assert.Equal(t, "3160.46", result.Entry.BalanceAfter.Fixed())
		assert.Equal(t, "groceries", result.Entry.Category)
		assert.Equal(t, models.COMPLETED, result.Entry.Status)
		assert.Regexp(t, `^TXN-[0-9A-F]{32}$`, result.Entry.Reference)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("debit", "success")))
		store.AssertExpectations(t)
	})

	t.Run("Credit Rounds To Cents", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.RequireFromString("0.105"),
		})

		require.NoError(t, err)
		assert.Equal(t, "0.11", result.Entry.Amount.Fixed())
		assert.Equal(t, "100.11", result.Account.Balance.Fixed())
		assert.Equal(t, DefaultCategory, result.Entry.Category)
	})

	t.Run("Insufficient Funds Leaves Account Untouched", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "50.00")))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.RequireFromString("50.01"),
		})

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		store.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("debit", "insufficient_funds")))
	})

	t.Run("Overdraft Allows Negative Balance", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		account := testAccount("acc1", "user1", "20.00")
		overdraft := models.MustMoney("100")
		account.Metadata = &models.AccountMetadata{OverdraftLimit: &overdraft}
		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(account))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.RequireFromString("120"),
		})

		require.NoError(t, err)
		assert.Equal(t, "-100.00", result.Account.Balance.Fixed())
	})

	t.Run("Minimum Balance Is Kept", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		account := testAccount("acc1", "user1", "100.00")
		minimum := models.MustMoney("80")
		account.Metadata = &models.AccountMetadata{MinimumBalance: &minimum}
		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(account))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.RequireFromString("95"),
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Contains(t, err.Error(), "20.00 available")
		store.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything)

		result, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.RequireFromString("20"),
		})
		require.NoError(t, err)
		assert.Equal(t, "80.00", result.Account.Balance.Fixed())
	})

	t.Run("Minimum Balance Offsets Overdraft", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		account := testAccount("acc1", "user1", "100.00")
		minimum := models.MustMoney("50")
		overdraft := models.MustMoney("30")
		account.Metadata = &models.AccountMetadata{MinimumBalance: &minimum, OverdraftLimit: &overdraft}
		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(account))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.RequireFromString("80.01"),
		})

		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("Foreign Account Is Not Found", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))

		_, err := svc.PostTransaction(ctx, stranger, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(1),
		})

		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("Missing Account Is Not Found", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "nope").Return(nil, storage.ErrNotFound)

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "nope",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(1),
		})

		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("Frozen Account Rejects Credits", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		account := testAccount("acc1", "user1", "100")
		account.Status = models.FROZEN
		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(account))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(1),
		})

		assert.ErrorIs(t, err, ErrAccountNotActive)
	})

	t.Run("Currency Mismatch", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(1),
			Currency:  "USD",
		})

		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("Validation", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		cases := map[string]PostRequest{
			"zero amount":     {AccountID: "acc1", Direction: models.DEBIT, Amount: decimal.Zero},
			"negative amount": {AccountID: "acc1", Direction: models.DEBIT, Amount: decimal.NewFromInt(-5)},
			"rounds to zero":  {AccountID: "acc1", Direction: models.DEBIT, Amount: decimal.RequireFromString("0.004")},
			"unknown type":    {AccountID: "acc1", Direction: "refund", Amount: decimal.NewFromInt(5)},
			"missing account": {Direction: models.CREDIT, Amount: decimal.NewFromInt(5)},
			"above maximum":   {AccountID: "acc1", Direction: models.CREDIT, Amount: decimal.RequireFromString("1000000000000")},
			"huge exponent":   {AccountID: "acc1", Direction: models.CREDIT, Amount: decimal.RequireFromString("1e20000000")},
			"tiny exponent":   {AccountID: "acc1", Direction: models.CREDIT, Amount: decimal.RequireFromString("1e-20000000")},
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.PostTransaction(ctx, owner, req)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
		store.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Directions Share One Series", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		for _, direction := range []models.Direction{"refund", "x1", "x2", "DEBIT"} {
			_, err := svc.PostTransaction(ctx, owner, PostRequest{AccountID: "acc1", Direction: direction, Amount: decimal.NewFromInt(5)})
			assert.ErrorIs(t, err, ErrValidation)
		}

		assert.Equal(t, 4.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("invalid", "invalid")))
		assert.Equal(t, 1, testutil.CollectAndCount(m.PostingsTotal))
	})

	t.Run("Retries After Concurrent Update", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Once().Return(storage.ErrVersionConflict)
		store.On("ApplyPostings", mock.Anything, mock.Anything).Once().Return(nil)

		result, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.NewFromInt(40),
		})

		require.NoError(t, err)
		assert.Equal(t, "60.00", result.Account.Balance.Fixed())
		store.AssertNumberOfCalls(t, "GetAccount", 2)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.OptimisticRetries))
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(storage.ErrVersionConflict)

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.DEBIT,
			Amount:    decimal.NewFromInt(40),
		})

		assert.ErrorIs(t, err, ErrConcurrentUpdate)
		store.AssertNumberOfCalls(t, "ApplyPostings", 3)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("debit", "conflict")))
	})

	t.Run("Store Failure Is Not Retried", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(errors.New("dynamodb unavailable"))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(1),
		})

		assert.ErrorContains(t, err, "failed to apply posting")
		store.AssertNumberOfCalls(t, "ApplyPostings", 1)
	})

	t.Run("Publishes Entry Posted", func(t *testing.T) {
		store := new(mocks.Storage)
		publisher := new(eventmocks.Publisher)
		svc, _ := newTestService(store, publisher)

		store.On("GetAccount", mock.Anything, "acc1").Return(fresh(testAccount("acc1", "user1", "100")))
		store.On("ApplyPostings", mock.Anything, mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
			data, ok := e.Data.(EntryPostedData)
			return e.Type == events.EntryPosted && e.UserId == "user1" && ok && data.BalanceAfter == "125.00"
		})).Return(errors.New("queue down"))

		_, err := svc.PostTransaction(ctx, owner, PostRequest{
			AccountID: "acc1",
			Direction: models.CREDIT,
			Amount:    decimal.NewFromInt(25),
		})

		assert.NoError(t, err, "publish failures must not fail the posting")
		publisher.AssertExpectations(t)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves Funds Atomically", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, m := newTestService(store, nil)

		checking := testAccount("chk", "user1", "3247.89")
		savings := testAccount("sav", "user1", "9300.00")
		savings.Type = models.SAVINGS
		store.On("GetAccount", mock.Anything, "chk").Return(fresh(checking))
		store.On("GetAccount", mock.Anything, "sav").Return(fresh(savings))

		var debit, credit storage.Posting
		store.On("ApplyPostings", mock.Anything,
			mock.MatchedBy(func(p storage.Posting) bool { return p.Account.Id == "chk" }),
			mock.MatchedBy(func(p storage.Posting) bool { return p.Account.Id == "sav" }),
		).Run(func(args mock.Arguments) {
			debit = args.Get(1).(storage.Posting)
			credit = args.Get(2).(storage.Posting)
		}).Return(nil)

		result, err := svc.Transfer(ctx, owner, TransferRequest{
			FromAccountID: "chk",
			ToAccountID:   "sav",
			Amount:        decimal.RequireFromString("500.00"),
			Description:   "Monthly savings",
		})

		require.NoError(t, err)
		assert.Equal(t, "2747.89", result.FromAccount.Balance.Fixed())
		assert.Equal(t, "9800.00", result.ToAccount.Balance.Fixed())
		assert.Equal(t, result.Reference, result.Debit.Reference)
		assert.Equal(t, result.Reference, result.Credit.Reference)
		assert.Regexp(t, `^TRF-[0-9A-F]{32}$`, result.Reference)
		assert.Equal(t, models.DEBIT, result.Debit.Direction)
		assert.Equal(t, models.CREDIT, result.Credit.Direction)
		assert.Equal(t, "sav", result.Debit.Transfer.CounterpartyAccountId)
		assert.Equal(t, checking.AccountNumber, result.Credit.Transfer.CounterpartyAccountNumber)
		assert.Equal(t, TransferCategory, result.Debit.Category)

		assert.Equal(t, int64(4), debit.ReadVersion)
		assert.Equal(t, "2747.89", debit.Entry.BalanceAfter.Fixed())
		assert.Equal(t, "9800.00", credit.Entry.BalanceAfter.Fixed())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.TransfersTotal.WithLabelValues("success")))
		store.AssertExpectations(t)
	})

	t.Run("Destination May Belong To Another User", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "mine").Return(fresh(testAccount("mine", "user1", "100")))
		store.On("GetAccount", mock.Anything, "theirs").Return(fresh(testAccount("theirs", "user2", "0")))
		store.On("ApplyPostings", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "mine", ToAccountID: "theirs", Amount: decimal.NewFromInt(30)})

		require.NoError(t, err)
		assert.Equal(t, "user2", result.Credit.UserId)
		assert.Equal(t, "30.00", result.ToAccount.Balance.Fixed())
	})

	t.Run("Source Must Be Owned", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "theirs").Return(fresh(testAccount("theirs", "user2", "1000")))

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "theirs", ToAccountID: "mine", Amount: decimal.NewFromInt(30)})

		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("Same Account", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "a", ToAccountID: "a", Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrSameAccount)
	})

	t.Run("Destination Not Found", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "chk").Return(fresh(testAccount("chk", "user1", "100")))
		store.On("GetAccount", mock.Anything, "gone").Return(nil, storage.ErrNotFound)

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "chk", ToAccountID: "gone", Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrAccountNotFound)
		store.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "chk").Return(fresh(testAccount("chk", "user1", "100")))
		store.On("GetAccount", mock.Anything, "sav").Return(fresh(testAccount("sav", "user1", "50")))

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "chk", ToAccountID: "sav", Amount: decimal.NewFromInt(101)})

		assert.ErrorIs(t, err, ErrInsufficientFunds)
		store.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Closed Destination", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		closed := testAccount("sav", "user1", "0")
		closed.Status = models.CLOSED
		store.On("GetAccount", mock.Anything, "chk").Return(fresh(testAccount("chk", "user1", "100")))
		store.On("GetAccount", mock.Anything, "sav").Return(fresh(closed))

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "chk", ToAccountID: "sav", Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrAccountNotActive)
	})

	t.Run("Currency Mismatch", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		usd := testAccount("usd", "user1", "0")
		usd.Currency = "USD"
		store.On("GetAccount", mock.Anything, "chk").Return(fresh(testAccount("chk", "user1", "100")))
		store.On("GetAccount", mock.Anything, "usd").Return(fresh(usd))

		_, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "chk", ToAccountID: "usd", Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})

	t.Run("Retries Both Legs Together", func(t *testing.T) {
		store := new(mocks.Storage)
		svc, _ := newTestService(store, nil)

		store.On("GetAccount", mock.Anything, "chk").Return(fresh(testAccount("chk", "user1", "100")))
		store.On("GetAccount", mock.Anything, "sav").Return(fresh(testAccount("sav", "user1", "50")))
		store.On("ApplyPostings", mock.Anything, mock.Anything, mock.Anything).Once().Return(storage.ErrVersionConflict)
		store.On("ApplyPostings", mock.Anything, mock.Anything, mock.Anything).Once().Return(nil)

		result, err := svc.Transfer(ctx, owner, TransferRequest{FromAccountID: "chk", ToAccountID: "sav", Amount: decimal.NewFromInt(25)})

		require.NoError(t, err)
		assert.Equal(t, "75.00", result.FromAccount.Balance.Fixed())
		assert.Equal(t, "75.00", result.ToAccount.Balance.Fixed())
		store.AssertNumberOfCalls(t, "GetAccount", 4)
	})
}
