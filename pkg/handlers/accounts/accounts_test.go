package accounts_test

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
	"github.com/chris/ethicalbank/pkg/handlers/accounts"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/storage"
	"github.com/chris/ethicalbank/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var owner = auth.Principal{UserID: "user1"}

func newHandler(store *mocks.Storage) *accounts.AccountsHandler {
	svc := banking.NewService(store, nil, nil, logging.Discard(), 3)
	return accounts.NewAccountsHandler(svc, logging.Discard())
}

func asOwner(req *http.Request) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), owner))
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, data any) api.Envelope {
	t.Helper()
	env := api.Envelope{Data: data}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func testAccount(balance string) *models.Account {
	return &models.Account{
		Id:            "a1",
		UserId:        "user1",
		AccountNumber: "4532015112830366",
		Type:          models.CHECKING,
		Balance:       models.MustMoney(balance),
		Currency:      "INR",
		Status:        models.ACTIVE,
		Version:       2,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestOpenAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
			return a.UserId == "user1" && a.Type == models.SAVINGS && a.Currency == "INR" && a.Balance.IsZero()
		})).Return(func(_ context.Context, a *models.Account) (*models.Account, error) { return a, nil })

		h := newHandler(mockStorage)

		body, _ := json.Marshal(api.NewAccount{AccountType: "savings"})
		req := asOwner(httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewReader(body)))
		rr := httptest.NewRecorder()

		h.OpenAccount(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var account api.Account
		env := decode(t, rr, &account)
		assert.True(t, env.Success)
		assert.Equal(t, "0.00", account.Balance)
		assert.Equal(t, "active", account.Status)
		assert.Len(t, account.AccountNumber, 16)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		h := newHandler(mockStorage)

		body, _ := json.Marshal(api.NewAccount{AccountType: "crypto"})
		req := asOwner(httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewReader(body)))
		rr := httptest.NewRecorder()

		h.OpenAccount(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
		mockStorage.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
	})
}

func TestListAccounts(t *testing.T) {
	mockStorage := new(mocks.Storage)
	mockStorage.On("ListAccountsByUserID", mock.Anything, "user1").Return([]models.Account{*testAccount("3247.89")}, nil)

	h := newHandler(mockStorage)

	req := asOwner(httptest.NewRequest(http.MethodGet, "/api/accounts", nil))
	rr := httptest.NewRecorder()

	h.ListAccounts(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var list []api.Account
	decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "3247.89", list[0].Balance)
	mockStorage.AssertExpectations(t)
}

func TestGetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(testAccount("10"), nil)

		h := newHandler(mockStorage)

		req := asOwner(httptest.NewRequest(http.MethodGet, "/api/accounts/a1", nil))
		rr := httptest.NewRecorder()

		h.GetAccount(rr, req, "a1")

		assert.Equal(t, http.StatusOK, rr.Code)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "missing").Return(nil, storage.ErrNotFound)

		h := newHandler(mockStorage)

		req := asOwner(httptest.NewRequest(http.MethodGet, "/api/accounts/missing", nil))
		rr := httptest.NewRecorder()

		h.GetAccount(rr, req, "missing")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "NOT_FOUND")
	})

	t.Run("No Principal", func(t *testing.T) {
		h := newHandler(new(mocks.Storage))

		req := httptest.NewRequest(http.MethodGet, "/api/accounts/a1", nil)
		rr := httptest.NewRecorder()

		h.GetAccount(rr, req, "a1")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestCloseAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(testAccount("0"), nil)
		mockStorage.On("CloseAccount", mock.Anything, mock.Anything, int64(2)).Return(nil)

		h := newHandler(mockStorage)

		req := asOwner(httptest.NewRequest(http.MethodDelete, "/api/accounts/a1", nil))
		rr := httptest.NewRecorder()

		h.CloseAccount(rr, req, "a1")

		assert.Equal(t, http.StatusOK, rr.Code)
		var account api.Account
		decode(t, rr, &account)
		assert.Equal(t, "closed", account.Status)
		assert.NotNil(t, account.ClosedAt)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Has Balance", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetAccount", mock.Anything, "a1").Return(testAccount("12.50"), nil)

		h := newHandler(mockStorage)

		req := asOwner(httptest.NewRequest(http.MethodDelete, "/api/accounts/a1", nil))
		rr := httptest.NewRecorder()

		h.CloseAccount(rr, req, "a1")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "ACCOUNT_HAS_BALANCE")
	})
}
