package models

import (
	"time"
)

// AccountType enumerates the kinds of accounts a user can hold.
type AccountType string

const (
	CHECKING       AccountType = "checking"
	SAVINGS        AccountType = "savings"
	CREDIT_ACCOUNT AccountType = "credit"
	LOAN           AccountType = "loan"
	INVESTMENT     AccountType = "investment"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case CHECKING, SAVINGS, CREDIT_ACCOUNT, LOAN, INVESTMENT:
		return true
	}
	return false
}

// AccountStatus defines the possible states of an account.
type AccountStatus string

const (
	ACTIVE   AccountStatus = "active"
	INACTIVE AccountStatus = "inactive"
	FROZEN   AccountStatus = "frozen"
	CLOSED   AccountStatus = "closed"
)

// AccountMetadata carries the optional limits attached to an account.
type AccountMetadata struct {
	CreditLimit    *Money `dynamodbav:"credit_limit,omitempty"`
	InterestRate   *Money `dynamodbav:"interest_rate,omitempty"`
	MinimumBalance *Money `dynamodbav:"minimum_balance,omitempty"`
	OverdraftLimit *Money `dynamodbav:"overdraft_limit,omitempty"`
}

// Account represents the internal domain model for a bank account.
type Account struct {
	Id            string           `dynamodbav:"id"`
	UserId        string           `dynamodbav:"user_id"`
	AccountNumber string           `dynamodbav:"account_number"`
	Type          AccountType      `dynamodbav:"account_type"`
	Balance       Money            `dynamodbav:"balance"`
	Currency      string           `dynamodbav:"currency"`
	Status        AccountStatus    `dynamodbav:"status"`
	Metadata      *AccountMetadata `dynamodbav:"metadata,omitempty"`
	Version       int64            `dynamodbav:"version"`
	CreatedAt     time.Time        `dynamodbav:"created_at"`
	UpdatedAt     time.Time        `dynamodbav:"updated_at"`
	ClosedAt      *time.Time       `dynamodbav:"closed_at,omitempty"`
}

// Headroom is how far below zero a debit may take the balance.
// Credit accounts may draw down to their credit limit; any account may use its overdraft limit.
func (a *Account) Headroom() Money {
	headroom := ZeroMoney
	if a.Metadata == nil {
		return headroom
	}
	if a.Type == CREDIT_ACCOUNT && a.Metadata.CreditLimit != nil {
		headroom = NewMoney(headroom.Add(a.Metadata.CreditLimit.Decimal))
	}
	if a.Metadata.OverdraftLimit != nil {
		headroom = NewMoney(headroom.Add(a.Metadata.OverdraftLimit.Decimal))
	}
	return headroom
}

// Direction is the side of the ledger an entry lands on.
type Direction string

const (
	DEBIT  Direction = "debit"
	CREDIT Direction = "credit"
)

// EntryStatus is always COMPLETED once an entry is written; entries are immutable.
type EntryStatus string

const (
	COMPLETED EntryStatus = "completed"
)

// TransferMetadata links one leg of a transfer to its counterparty.
type TransferMetadata struct {
	CounterpartyAccountId     string `dynamodbav:"counterparty_account_id"`
	CounterpartyAccountNumber string `dynamodbav:"counterparty_account_number"`
}

// LedgerEntry represents a single immutable credit or debit applied to one account.
type LedgerEntry struct {
	EntryId      string            `dynamodbav:"entry_id"`
	AccountId    string            `dynamodbav:"account_id"`
	UserId       string            `dynamodbav:"user_id"`
	Direction    Direction         `dynamodbav:"direction"`
	Amount       Money             `dynamodbav:"amount"`
	Currency     string            `dynamodbav:"currency"`
	Description  string            `dynamodbav:"description"`
	Category     string            `dynamodbav:"category"`
	Reference    string            `dynamodbav:"reference"`
	BalanceAfter Money             `dynamodbav:"balance_after"`
	Status       EntryStatus       `dynamodbav:"status"`
	Transfer     *TransferMetadata `dynamodbav:"transfer,omitempty"`
	CreatedAt    time.Time         `dynamodbav:"created_at"`
}

// ConsentStatus defines the possible states of a consent record.
type ConsentStatus string

const (
	GRANTED   ConsentStatus = "granted"
	REVOKED   ConsentStatus = "revoked"
	WITHDRAWN ConsentStatus = "withdrawn"
	EXPIRED   ConsentStatus = "expired"
)

// ConsentMetadata records where a consent was captured.
type ConsentMetadata struct {
	Source    string `dynamodbav:"source"`
	IPAddress string `dynamodbav:"ip_address"`
	UserAgent string `dynamodbav:"user_agent"`
}

// RevocationMethod is a snapshot of how a consent was terminated.
type RevocationMethod struct {
	Method    string    `dynamodbav:"method"`
	IPAddress string    `dynamodbav:"ip_address"`
	UserAgent string    `dynamodbav:"user_agent"`
	Timestamp time.Time `dynamodbav:"timestamp"`
}

// ConsentRecord represents the internal domain model for a user's consent.
type ConsentRecord struct {
	Id               string            `dynamodbav:"id"`
	UserId           string            `dynamodbav:"user_id"`
	ConsentType      string            `dynamodbav:"consent_type"`
	Status           ConsentStatus     `dynamodbav:"status"`
	Purpose          string            `dynamodbav:"purpose"`
	DataTypes        []string          `dynamodbav:"data_types"`
	Version          string            `dynamodbav:"version"`
	Metadata         ConsentMetadata   `dynamodbav:"metadata"`
	ExpiresAt        *time.Time        `dynamodbav:"expires_at,omitempty"`
	RevokedAt        *time.Time        `dynamodbav:"revoked_at,omitempty"`
	RevocationReason string            `dynamodbav:"revocation_reason,omitempty"`
	WithdrawnAt      *time.Time        `dynamodbav:"withdrawn_at,omitempty"`
	WithdrawalReason string            `dynamodbav:"withdrawal_reason,omitempty"`
	RevocationMethod *RevocationMethod `dynamodbav:"revocation_method,omitempty"`
	ExpiredAt        *time.Time        `dynamodbav:"expired_at,omitempty"`
	CreatedAt        time.Time         `dynamodbav:"created_at"`
	UpdatedAt        time.Time         `dynamodbav:"updated_at"`
}

// IsLapsed reports whether a granted consent has passed its expiry time.
func (c *ConsentRecord) IsLapsed(now time.Time) bool {
	return c.Status == GRANTED && c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// DataAccessPermissions holds a user's allow/deny flags per data attribute.
type DataAccessPermissions struct {
	UserId      string          `dynamodbav:"user_id"`
	Permissions map[string]bool `dynamodbav:"permissions"`
	Version     int64           `dynamodbav:"version"`
	CreatedAt   time.Time       `dynamodbav:"created_at"`
	UpdatedAt   time.Time       `dynamodbav:"updated_at"`
}

// PrivacyScore summarises how restrictive a user's permissions are. Higher is more private.
type PrivacyScore struct {
	Score             int    `json:"score"`
	MaxScore          int    `json:"max_score"`
	AllowedAttributes int    `json:"allowed_attributes"`
	DeniedAttributes  int    `json:"denied_attributes"`
	TotalAttributes   int    `json:"total_attributes"`
	Message           string `json:"message"`
}
