// Package response writes the JSON envelope shared by every handler and maps domain errors onto it.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/middleware"
	"github.com/chris/ethicalbank/pkg/privacy"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidAction     = "INVALID_ACTION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeAlreadyRevoked    = "ALREADY_REVOKED"
	CodeAlreadyWithdrawn  = "ALREADY_WITHDRAWN"
	CodeNotGranted        = "CONSENT_NOT_GRANTED"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeAccountNotActive  = "ACCOUNT_NOT_ACTIVE"
	CodeAccountHasBalance = "ACCOUNT_HAS_BALANCE"
	CodeCannotDelete      = "CANNOT_DELETE_ACTIVE"
	CodeInternal          = "INTERNAL_ERROR"

	internalMessage = "An unexpected error occurred"
	maxBodyBytes    = 1 << 20
)

// ErrBadRequest marks a body that could not be decoded.
var ErrBadRequest = errors.New("invalid request body")

type errorMapping struct {
	target error
	code   string
	status int
}

var errorTable = []errorMapping{
	{auth.ErrUnauthenticated, CodeUnauthorized, http.StatusUnauthorized},
	{auth.ErrInvalidToken, CodeUnauthorized, http.StatusUnauthorized},

	{ErrBadRequest, CodeValidation, http.StatusBadRequest},
	{banking.ErrValidation, CodeValidation, http.StatusBadRequest},
	{banking.ErrSameAccount, CodeValidation, http.StatusBadRequest},
	{banking.ErrCurrencyMismatch, CodeValidation, http.StatusBadRequest},
	{consent.ErrValidation, CodeValidation, http.StatusBadRequest},
	{privacy.ErrValidation, CodeValidation, http.StatusBadRequest},
	{consent.ErrInvalidAction, CodeInvalidAction, http.StatusBadRequest},

	{banking.ErrAccountNotFound, CodeNotFound, http.StatusNotFound},
	{banking.ErrTransactionNotFound, CodeNotFound, http.StatusNotFound},
	{consent.ErrConsentNotFound, CodeNotFound, http.StatusNotFound},

	{consent.ErrDuplicateGrant, CodeConflict, http.StatusConflict},
	{consent.ErrConcurrentUpdate, CodeConflict, http.StatusConflict},
	{banking.ErrConcurrentUpdate, CodeConflict, http.StatusConflict},
	{privacy.ErrConcurrentUpdate, CodeConflict, http.StatusConflict},
	{consent.ErrAlreadyRevoked, CodeAlreadyRevoked, http.StatusConflict},
	{consent.ErrAlreadyWithdrawn, CodeAlreadyWithdrawn, http.StatusConflict},
	{consent.ErrNotGranted, CodeNotGranted, http.StatusConflict},

	{banking.ErrInsufficientFunds, CodeInsufficientFunds, http.StatusUnprocessableEntity},
	{banking.ErrAccountNotActive, CodeAccountNotActive, http.StatusUnprocessableEntity},
	{banking.ErrAccountHasBalance, CodeAccountHasBalance, http.StatusUnprocessableEntity},
	{consent.ErrCannotDeleteActive, CodeCannotDelete, http.StatusUnprocessableEntity},
}

// Classify returns the envelope code and HTTP status for err.
func Classify(err error) (string, int) {
	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		return CodeValidation, http.StatusBadRequest
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.code, m.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}

// JSON writes data inside a successful envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, api.Envelope{Success: true, Data: data})
}

// Error writes err as a failed envelope. Internal errors are logged and their detail withheld.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code, status := Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		message = internalMessage
	}
	middleware.Annotate(r.Context(), slog.String("error_code", code))
	write(w, status, api.Envelope{Success: false, Error: &api.ErrorBody{Code: code, Message: message}})
}

// ErrorWriter adapts Error to the signature used by auth.Middleware and api.ChiServerOptions.
func ErrorWriter(logger *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		Error(w, r, logger, err)
	}
}

// Decode reads a JSON body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func write(w http.ResponseWriter, status int, body api.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}
