package accounts

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/mapping"
)

// AccountsHandler holds the dependencies for account-related handlers.
type AccountsHandler struct {
	Service *banking.Service
	Logger  *slog.Logger
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(service *banking.Service, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{Service: service, Logger: logger}
}

// OpenAccount handles the logic for opening a new account.
func (h *AccountsHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var newAccount api.NewAccount
	if err := response.Decode(r, &newAccount); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	account, err := h.Service.OpenAccount(r.Context(), p, mapping.ToDomainOpenAccount(&newAccount))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, mapping.ToApiAccount(account))
}

// ListAccounts handles the logic for retrieving the caller's accounts.
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	domainAccounts, err := h.Service.ListAccounts(r.Context(), p)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	apiAccounts := make([]api.Account, len(domainAccounts))
	for i := range domainAccounts {
		apiAccounts[i] = mapping.ToApiAccount(&domainAccounts[i])
	}
	response.JSON(w, http.StatusOK, apiAccounts)
}

// GetAccount handles the logic for retrieving one account.
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request, accountId string) {
	p, _ := auth.PrincipalFrom(r.Context())
	account, err := h.Service.GetAccount(r.Context(), p, accountId)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiAccount(account))
}

// CloseAccount soft-deletes an account with a zero balance.
func (h *AccountsHandler) CloseAccount(w http.ResponseWriter, r *http.Request, accountId string) {
	p, _ := auth.PrincipalFrom(r.Context())
	account, err := h.Service.CloseAccount(r.Context(), p, accountId)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiAccount(account))
}
