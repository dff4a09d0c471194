// Package ids generates the identifiers handed out by the service.
// Every identifier is derived from a random UUID; uniqueness is enforced by the store, never by retrying.
package ids

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// TransactionPrefix marks the reference of a single credit or debit.
	TransactionPrefix = "TXN"
	// TransferPrefix marks the reference shared by both legs of a transfer.
	TransferPrefix = "TRF"

	accountNumberDigits = 16
)

var accountNumberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(accountNumberDigits-1), nil)

// New returns a random UUID string.
func New() string {
	return uuid.New().String()
}

// NewReference returns prefix-XXXXXXXX... with 32 upper-case hex characters.
func NewReference(prefix string) string {
	id := uuid.New()
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}

// NewAccountNumber returns a 16-digit account number that never starts with zero.
func NewAccountNumber() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	n.Mod(n, accountNumberSpace)
	// Leading digit 1-9 keeps the length fixed.
	lead := int(id[0]%9) + 1
	digits := n.Text(10)
	return fmt.Sprintf("%d%s%s", lead, strings.Repeat("0", accountNumberDigits-1-len(digits)), digits)
}
