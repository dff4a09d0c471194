package mapping

import (
	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/models"
	"github.com/chris/ethicalbank/pkg/privacy"
	"github.com/shopspring/decimal"
)

// ToApiAccount converts a domain Account model to an API Account model.
func ToApiAccount(account *models.Account) api.Account {
	return api.Account{
		Id:            account.Id,
		AccountNumber: account.AccountNumber,
		AccountType:   string(account.Type),
		Balance:       account.Balance.Fixed(),
		Currency:      account.Currency,
		Status:        string(account.Status),
		Metadata:      toApiAccountMetadata(account.Metadata),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
		ClosedAt:      account.ClosedAt,
	}
}

func toApiAccountMetadata(md *models.AccountMetadata) *api.AccountMetadata {
	if md == nil {
		return nil
	}
	return &api.AccountMetadata{
		CreditLimit:    fixed(md.CreditLimit),
		InterestRate:   fixed(md.InterestRate),
		MinimumBalance: fixed(md.MinimumBalance),
		OverdraftLimit: fixed(md.OverdraftLimit),
	}
}

func fixed(m *models.Money) *string {
	if m == nil {
		return nil
	}
	s := m.Fixed()
	return &s
}

// ToDomainOpenAccount converts an API NewAccount model to an OpenAccountRequest.
func ToDomainOpenAccount(newAccount *api.NewAccount) banking.OpenAccountRequest {
	req := banking.OpenAccountRequest{
		Type:     models.AccountType(newAccount.AccountType),
		Currency: deref(newAccount.Currency),
	}
	if md := newAccount.Metadata; md != nil {
		req.Metadata = &models.AccountMetadata{
			CreditLimit:    money(md.CreditLimit),
			InterestRate:   money(md.InterestRate),
			MinimumBalance: money(md.MinimumBalance),
			OverdraftLimit: money(md.OverdraftLimit),
		}
	}
	return req
}

func money(d *decimal.Decimal) *models.Money {
	if d == nil {
		return nil
	}
	// Left unrounded; the banking service bounds-checks before rounding to cents.
	return &models.Money{Decimal: *d}
}

// ToApiTransaction converts a domain LedgerEntry model to an API Transaction model.
func ToApiTransaction(entry *models.LedgerEntry) api.Transaction {
	tx := api.Transaction{
		Id:           entry.EntryId,
		AccountId:    entry.AccountId,
		Type:         string(entry.Direction),
		Amount:       entry.Amount.Fixed(),
		Currency:     entry.Currency,
		Description:  entry.Description,
		Category:     entry.Category,
		Reference:    entry.Reference,
		BalanceAfter: entry.BalanceAfter.Fixed(),
		Status:       string(entry.Status),
		CreatedAt:    entry.CreatedAt,
	}
	if entry.Transfer != nil {
		tx.Counterparty = &api.TransferCounterparty{
			AccountId:     entry.Transfer.CounterpartyAccountId,
			AccountNumber: entry.Transfer.CounterpartyAccountNumber,
		}
	}
	return tx
}

func ToApiTransactions(entries []models.LedgerEntry) []api.Transaction {
	out := make([]api.Transaction, len(entries))
	for i := range entries {
		out[i] = ToApiTransaction(&entries[i])
	}
	return out
}

// ToDomainPostRequest converts an API NewTransaction model to a PostRequest.
func ToDomainPostRequest(newTx *api.NewTransaction) banking.PostRequest {
	return banking.PostRequest{
		AccountID:   newTx.AccountId,
		Direction:   models.Direction(newTx.Type),
		Amount:      newTx.Amount,
		Currency:    deref(newTx.Currency),
		Description: deref(newTx.Description),
		Category:    deref(newTx.Category),
	}
}

// ToDomainTransferRequest converts an API NewTransfer model to a TransferRequest.
func ToDomainTransferRequest(newTransfer *api.NewTransfer) banking.TransferRequest {
	return banking.TransferRequest{
		FromAccountID: newTransfer.FromAccountId,
		ToAccountID:   newTransfer.ToAccountId,
		Amount:        newTransfer.Amount,
		Description:   deref(newTransfer.Description),
		Category:      deref(newTransfer.Category),
	}
}

func ToApiPostingResult(result *banking.PostResult) api.PostingResult {
	return api.PostingResult{
		Transaction: ToApiTransaction(&result.Entry),
		Account:     ToApiAccount(&result.Account),
	}
}

func ToApiTransferResult(result *banking.TransferResult) api.TransferResult {
	return api.TransferResult{
		Reference:   result.Reference,
		Debit:       ToApiTransaction(&result.Debit),
		Credit:      ToApiTransaction(&result.Credit),
		FromAccount: ToApiAccount(&result.FromAccount),
		ToAccount:   ToApiAccount(&result.ToAccount),
	}
}

func ToApiSummary(summary *banking.Summary) api.TransactionSummary {
	breakdown := make(map[string]string, len(summary.CategoryBreakdown))
	for category, total := range summary.CategoryBreakdown {
		breakdown[category] = total.Fixed()
	}
	return api.TransactionSummary{
		Since:             summary.Since,
		TotalTransactions: summary.TotalTransactions,
		TotalDebited:      summary.TotalDebited.Fixed(),
		TotalCredited:     summary.TotalCredited.Fixed(),
		CategoryBreakdown: breakdown,
	}
}

// ToApiConsent converts a domain ConsentRecord model to an API Consent model.
func ToApiConsent(record *models.ConsentRecord) api.Consent {
	c := api.Consent{
		Id:          record.Id,
		ConsentType: record.ConsentType,
		Status:      string(record.Status),
		Purpose:     record.Purpose,
		DataTypes:   record.DataTypes,
		Version:     record.Version,
		Metadata: api.ConsentMetadata{
			Source:    record.Metadata.Source,
			IpAddress: record.Metadata.IPAddress,
			UserAgent: record.Metadata.UserAgent,
		},
		ExpiresAt:        record.ExpiresAt,
		RevokedAt:        record.RevokedAt,
		RevocationReason: optional(record.RevocationReason),
		WithdrawnAt:      record.WithdrawnAt,
		WithdrawalReason: optional(record.WithdrawalReason),
		ExpiredAt:        record.ExpiredAt,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
	if c.DataTypes == nil {
		c.DataTypes = []string{}
	}
	if m := record.RevocationMethod; m != nil {
		c.RevocationMethod = &api.RevocationMethod{
			Method:    m.Method,
			IpAddress: m.IPAddress,
			UserAgent: m.UserAgent,
			Timestamp: m.Timestamp,
		}
	}
	return c
}

func ToApiConsents(records []models.ConsentRecord) []api.Consent {
	out := make([]api.Consent, len(records))
	for i := range records {
		out[i] = ToApiConsent(&records[i])
	}
	return out
}

func ToApiDataAttributes(categories []privacy.Category) api.DataAttributes {
	out := api.DataAttributes{Categories: make([]api.DataAttributeCategory, len(categories))}
	for i, c := range categories {
		attrs := make([]api.DataAttribute, len(c.Attributes))
		for j, a := range c.Attributes {
			attrs[j] = api.DataAttribute{Id: a.Id, Name: a.Name, Description: a.Description}
		}
		out.Categories[i] = api.DataAttributeCategory{Key: c.Key, Category: c.Label, Attributes: attrs}
		out.TotalAttributes += len(attrs)
	}
	return out
}

func ToApiPermissions(p *privacy.Permissions) api.Permissions {
	return api.Permissions{
		UserId:          p.UserId,
		Permissions:     p.Permissions,
		LastUpdated:     p.LastUpdated,
		TotalAllowed:    p.TotalAllowed,
		TotalAttributes: p.TotalAttributes,
	}
}

func ToDomainPermissionUpdates(update *api.PermissionsUpdate) []privacy.PermissionUpdate {
	out := make([]privacy.PermissionUpdate, len(update.Permissions))
	for i, p := range update.Permissions {
		out[i] = privacy.PermissionUpdate{AttributeId: p.AttributeId, Allowed: p.Allowed}
	}
	return out
}

func ToApiPrivacyScore(score *privacy.Score) api.PrivacyScore {
	out := api.PrivacyScore{
		Score:             score.Score,
		MaxScore:          score.MaxScore,
		AllowedAttributes: score.AllowedAttributes,
		DeniedAttributes:  score.DeniedAttributes,
		TotalAttributes:   score.TotalAttributes,
		Message:           score.Message,
		Cached:            score.Cached,
	}
	if score.Cached {
		age := float64(score.CacheAge.Milliseconds()/100) / 10
		out.CacheAge = &age
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
