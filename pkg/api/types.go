// Package api defines the HTTP contract: request and response bodies, the response envelope,
// and the server interface mounted on a chi router.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the coded error carried by a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AccountMetadata carries optional account limits. Amounts are decimal strings.
type AccountMetadata struct {
	CreditLimit    *string `json:"creditLimit,omitempty"`
	InterestRate   *string `json:"interestRate,omitempty"`
	MinimumBalance *string `json:"minimumBalance,omitempty"`
	OverdraftLimit *string `json:"overdraftLimit,omitempty"`
}

// NewAccountMetadata is the request form of AccountMetadata.
type NewAccountMetadata struct {
	CreditLimit    *decimal.Decimal `json:"creditLimit,omitempty"`
	InterestRate   *decimal.Decimal `json:"interestRate,omitempty"`
	MinimumBalance *decimal.Decimal `json:"minimumBalance,omitempty"`
	OverdraftLimit *decimal.Decimal `json:"overdraftLimit,omitempty"`
}

type NewAccount struct {
	AccountType string              `json:"accountType"`
	Currency    *string             `json:"currency,omitempty"`
	Metadata    *NewAccountMetadata `json:"metadata,omitempty"`
}

type Account struct {
	Id            string           `json:"id"`
	AccountNumber string           `json:"accountNumber"`
	AccountType   string           `json:"accountType"`
	Balance       string           `json:"balance"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	Metadata      *AccountMetadata `json:"metadata,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	ClosedAt      *time.Time       `json:"closedAt,omitempty"`
}

// NewTransaction is a credit or debit request. Type is "credit" or "debit".
type NewTransaction struct {
	AccountId   string          `json:"accountId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    *string         `json:"currency,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
}

type NewTransfer struct {
	FromAccountId string          `json:"fromAccountId"`
	ToAccountId   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description,omitempty"`
	Category      *string         `json:"category,omitempty"`
}

type TransferCounterparty struct {
	AccountId     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
}

// Transaction is one ledger entry.
type Transaction struct {
	Id           string                `json:"id"`
	AccountId    string                `json:"accountId"`
	Type         string                `json:"type"`
	Amount       string                `json:"amount"`
	Currency     string                `json:"currency"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Reference    string                `json:"reference"`
	BalanceAfter string                `json:"balanceAfter"`
	Status       string                `json:"status"`
	Counterparty *TransferCounterparty `json:"counterparty,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
}

type PostingResult struct {
	Transaction Transaction `json:"transaction"`
	Account     Account     `json:"account"`
}

type TransferResult struct {
	Reference   string      `json:"reference"`
	Debit       Transaction `json:"debit"`
	Credit      Transaction `json:"credit"`
	FromAccount Account     `json:"fromAccount"`
	ToAccount   Account     `json:"toAccount"`
}

type TransactionSummary struct {
	Since             time.Time         `json:"since"`
	TotalTransactions int               `json:"totalTransactions"`
	TotalDebited      string            `json:"totalDebited"`
	TotalCredited     string            `json:"totalCredited"`
	CategoryBreakdown map[string]string `json:"categoryBreakdown"`
}

// ListTransactionsParams are the query parameters of ListTransactions.
type ListTransactionsParams struct {
	AccountId *string `form:"accountId,omitempty" json:"accountId,omitempty"`
	Type      *string `form:"type,omitempty" json:"type,omitempty"`
	Category  *string `form:"category,omitempty" json:"category,omitempty"`
	Limit     *int    `form:"limit,omitempty" json:"limit,omitempty"`
	Skip      *int    `form:"skip,omitempty" json:"skip,omitempty"`
}

type NewConsent struct {
	ConsentType string     `json:"consentType"`
	Purpose     string     `json:"purpose"`
	DataTypes   []string   `json:"dataTypes"`
	Version     *string    `json:"version,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ConsentAction is the body of a consent PATCH. Action is "revoke" or "withdraw".
type ConsentAction struct {
	Action string  `json:"action"`
	Reason *string `json:"reason,omitempty"`
}

type ConsentMetadata struct {
	Source    string `json:"source"`
	IpAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

type RevocationMethod struct {
	Method    string    `json:"method"`
	IpAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

type Consent struct {
	Id               string            `json:"id"`
	ConsentType      string            `json:"consentType"`
	Status           string            `json:"status"`
	Purpose          string            `json:"purpose"`
	DataTypes        []string          `json:"dataTypes"`
	Version          string            `json:"version"`
	Metadata         ConsentMetadata   `json:"metadata"`
	ExpiresAt        *time.Time        `json:"expiresAt,omitempty"`
	RevokedAt        *time.Time        `json:"revokedAt,omitempty"`
	RevocationReason *string           `json:"revocationReason,omitempty"`
	WithdrawnAt      *time.Time        `json:"withdrawnAt,omitempty"`
	WithdrawalReason *string           `json:"withdrawalReason,omitempty"`
	RevocationMethod *RevocationMethod `json:"revocationMethod,omitempty"`
	ExpiredAt        *time.Time        `json:"expiredAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type ListConsentsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

type DataAttribute struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DataAttributeCategory struct {
	Key        string          `json:"key"`
	Category   string          `json:"category"`
	Attributes []DataAttribute `json:"attributes"`
}

type DataAttributes struct {
	Categories      []DataAttributeCategory `json:"categories"`
	TotalAttributes int                     `json:"totalAttributes"`
}

type PermissionUpdate struct {
	AttributeId string `json:"attributeId"`
	Allowed     bool   `json:"allowed"`
}

type PermissionsUpdate struct {
	Permissions []PermissionUpdate `json:"permissions"`
}

type Permissions struct {
	UserId          string          `json:"userId"`
	Permissions     map[string]bool `json:"permissions"`
	LastUpdated     time.Time       `json:"lastUpdated"`
	TotalAllowed    int             `json:"totalAllowed"`
	TotalAttributes int             `json:"totalAttributes"`
}

type PrivacyScore struct {
	Score             int      `json:"score"`
	MaxScore          int      `json:"maxScore"`
	AllowedAttributes int      `json:"allowedAttributes"`
	DeniedAttributes  int      `json:"deniedAttributes"`
	TotalAttributes   int      `json:"totalAttributes"`
	Message           string   `json:"message"`
	Cached            bool     `json:"cached"`
	CacheAge          *float64 `json:"cacheAge,omitempty"`
}

type GetPrivacyScoreParams struct {
	Refresh *bool `form:"refresh,omitempty" json:"refresh,omitempty"`
}

type Health struct {
	Status string `json:"status"`
}
