package banking

import "errors"

var (
	// ErrValidation wraps every malformed-input failure. The wrapping message names the field.
	ErrValidation = errors.New("validation failed")

	// ErrAccountNotFound is returned for missing accounts and for accounts owned by someone else.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned for missing or foreign ledger entries.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInsufficientFunds is returned when a debit would take the balance below its allowed floor.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotActive is returned when a mutation targets an account that is not active.
	ErrAccountNotActive = errors.New("account is not active")

	// ErrAccountHasBalance is returned when closing an account whose balance is not zero.
	ErrAccountHasBalance = errors.New("account balance must be zero to close")

	// ErrSameAccount is returned when a transfer names the same account on both sides.
	ErrSameAccount = errors.New("source and destination accounts are the same")

	// ErrCurrencyMismatch is returned when amounts in different currencies would be combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrConcurrentUpdate is returned when the account kept changing underneath every attempt.
	ErrConcurrentUpdate = errors.New("account was modified concurrently, please retry")
)
