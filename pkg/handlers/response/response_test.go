package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/logging"
	"github.com/chris/ethicalbank/pkg/privacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{auth.ErrUnauthenticated, CodeUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: amount must be positive", banking.ErrValidation), CodeValidation, http.StatusBadRequest},
		{banking.ErrCurrencyMismatch, CodeValidation, http.StatusBadRequest},
		{privacy.ErrValidation, CodeValidation, http.StatusBadRequest},
		{&api.InvalidParamFormatError{ParamName: "limit", Err: errors.New("bad")}, CodeValidation, http.StatusBadRequest},
		{consent.ErrInvalidAction, CodeInvalidAction, http.StatusBadRequest},
		{fmt.Errorf("account a1: %w", banking.ErrAccountNotFound), CodeNotFound, http.StatusNotFound},
		{consent.ErrConsentNotFound, CodeNotFound, http.StatusNotFound},
		{consent.ErrDuplicateGrant, CodeConflict, http.StatusConflict},
		{banking.ErrConcurrentUpdate, CodeConflict, http.StatusConflict},
		{privacy.ErrConcurrentUpdate, CodeConflict, http.StatusConflict},
		{consent.ErrAlreadyRevoked, CodeAlreadyRevoked, http.StatusConflict},
		{consent.ErrAlreadyWithdrawn, CodeAlreadyWithdrawn, http.StatusConflict},
		{consent.ErrNotGranted, CodeNotGranted, http.StatusConflict},
		{banking.ErrInsufficientFunds, CodeInsufficientFunds, http.StatusUnprocessableEntity},
		{banking.ErrAccountNotActive, CodeAccountNotActive, http.StatusUnprocessableEntity},
		{banking.ErrAccountHasBalance, CodeAccountHasBalance, http.StatusUnprocessableEntity},
		{consent.ErrCannotDeleteActive, CodeCannotDelete, http.StatusUnprocessableEntity},
		{errors.New("dynamodb throttled"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, status := Classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestError(t *testing.T) {
	t.Run("Client Error Keeps Message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)

		Error(rr, req, logging.Discard(), fmt.Errorf("account a1 holds 10.00: %w", banking.ErrInsufficientFunds))

		var body api.Envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.False(t, body.Success)
		assert.Equal(t, CodeInsufficientFunds, body.Error.Code)
		assert.Contains(t, body.Error.Message, "insufficient funds")
	})

	t.Run("Internal Error Hides Detail", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)

		Error(rr, req, logging.Discard(), errors.New("dynamodb: table ledger not found"))

		var body api.Envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, CodeInternal, body.Error.Code)
		assert.NotContains(t, body.Error.Message, "dynamodb")
	})
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	JSON(rr, http.StatusCreated, map[string]string{"id": "a1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"a1"}}`, rr.Body.String())
}

func TestDecode(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		var dst api.ConsentAction
		req := httptest.NewRequest(http.MethodPatch, "/", bytes.NewBufferString(`{"action":"revoke"}`))

		require.NoError(t, Decode(req, &dst))
		assert.Equal(t, "revoke", dst.Action)
	})

	t.Run("Unknown Field", func(t *testing.T) {
		var dst api.ConsentAction
		req := httptest.NewRequest(http.MethodPatch, "/", bytes.NewBufferString(`{"action":"revoke","force":true}`))

		assert.ErrorIs(t, Decode(req, &dst), ErrBadRequest)
	})

	t.Run("Malformed", func(t *testing.T) {
		var dst api.ConsentAction
		req := httptest.NewRequest(http.MethodPatch, "/", bytes.NewBufferString(`{"action":`))

		assert.ErrorIs(t, Decode(req, &dst), ErrBadRequest)
	})
}
