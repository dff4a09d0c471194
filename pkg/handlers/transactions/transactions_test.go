package transactions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/handlers/transactions"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/chris/ethicalbank/pkg/storage/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandler(store *mocks.Storage) *transactions.TransactionsHandler {
	svc := banking.NewService(store, nil, nil, logging.Discard(), 3)
	return transactions.NewTransactionsHandler(svc, logging.Discard())
}

func post(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "user1"}))
}

func account(id, userID, balance string) *models.Account {
	return &models.Account{
		Id:            id,
		UserId:        userID,
		AccountNumber: "45320151128303" + id[len(id)-1:] + "6",
		Type:          models.CHECKING,
		Balance:       models.MustMoney(balance),
		Currency:      "INR",
		Status:        models.ACTIVE,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("Credit", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(account("a1", "user1", "100.00"), nil)
		mockStorage.On("ApplyPostings", mock.Anything, mock.MatchedBy(func(p storage.Posting) bool {
			return p.ReadVersion == 1 && p.Account.Version == 2 && p.Entry.BalanceAfter.Equal(decimal.RequireFromString("150.25"))
		})).Return(nil)

		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransaction(rr, post(t, "/api/transactions", api.NewTransaction{
			AccountId: "a1",
			Type:      "credit",
			Amount:    decimal.RequireFromString("50.25"),
		}))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var result api.PostingResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &result}))
		assert.Equal(t, "50.25", result.Transaction.Amount)
		assert.Equal(t, "150.25", result.Transaction.BalanceAfter)
		assert.Equal(t, "150.25", result.Account.Balance)
		assert.Equal(t, "other", result.Transaction.Category)
		assert.Equal(t, "completed", result.Transaction.Status)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(account("a1", "user1", "10.00"), nil)

		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransaction(rr, post(t, "/api/transactions", api.NewTransaction{
			AccountId: "a1",
			Type:      "debit",
			Amount:    decimal.RequireFromString("10.01"),
		}))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "INSUFFICIENT_FUNDS")
		mockStorage.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything)
	})

	t.Run("Non Positive Amount", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransaction(rr, post(t, "/api/transactions", api.NewTransaction{
			AccountId: "a1",
			Type:      "credit",
			Amount:    decimal.RequireFromString("0.004"),
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		h := newHandler(new(mocks.Storage))
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(`{"amount":`))
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "user1"}))

		h.CreateTransaction(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Persistent Conflict", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(func(_ context.Context, _ string) (*models.Account, error) {
			return account("a1", "user1", "100.00"), nil
		})
		mockStorage.On("ApplyPostings", mock.Anything, mock.Anything).Return(storage.ErrVersionConflict)

		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransaction(rr, post(t, "/api/transactions", api.NewTransaction{
			AccountId: "a1",
			Type:      "debit",
			Amount:    decimal.RequireFromString("5"),
		}))

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockStorage.AssertNumberOfCalls(t, "ApplyPostings", 3)
	})
}

func TestCreateTransfer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(account("a1", "user1", "500.00"), nil)
		mockStorage.On("GetAccount", mock.Anything, "b2").Return(account("b2", "user2", "20.00"), nil)
		mockStorage.On("ApplyPostings", mock.Anything,
			mock.MatchedBy(func(p storage.Posting) bool { return p.Entry.Direction == models.DEBIT }),
			mock.MatchedBy(func(p storage.Posting) bool { return p.Entry.Direction == models.CREDIT }),
		).Return(nil)

		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransfer(rr, post(t, "/api/transactions/transfer", api.NewTransfer{
			FromAccountId: "a1",
			ToAccountId:   "b2",
			Amount:        decimal.RequireFromString("120"),
		}))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var result api.TransferResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &api.Envelope{Data: &result}))
		assert.Equal(t, "380.00", result.FromAccount.Balance)
		assert.Equal(t, "140.00", result.ToAccount.Balance)
		assert.Equal(t, result.Reference, result.Debit.Reference)
		assert.Equal(t, result.Reference, result.Credit.Reference)
		require.NotNil(t, result.Debit.Counterparty)
		assert.Equal(t, "b2", result.Debit.Counterparty.AccountId)
		assert.Equal(t, "transfer", result.Credit.Category)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Same Account", func(t *testing.T) {
		h := newHandler(new(mocks.Storage))
		rr := httptest.NewRecorder()

		h.CreateTransfer(rr, post(t, "/api/transactions/transfer", api.NewTransfer{
			FromAccountId: "a1",
			ToAccountId:   "a1",
			Amount:        decimal.RequireFromString("1"),
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Source Owned By Someone Else", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "b2").Return(account("b2", "user2", "900.00"), nil)

		h := newHandler(mockStorage)
		rr := httptest.NewRecorder()

		h.CreateTransfer(rr, post(t, "/api/transactions/transfer", api.NewTransfer{
			FromAccountId: "b2",
			ToAccountId:   "a1",
			Amount:        decimal.RequireFromString("1"),
		}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockStorage.AssertNotCalled(t, "ApplyPostings", mock.Anything, mock.Anything, mock.Anything)
	})
}
