package ledger

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/mapping"
	"github.com/chris/ethicalbank/pkg/models"
)

// LedgerHandler holds the dependencies for ledger read handlers.
type LedgerHandler struct {
	Service *banking.Service
	Logger  *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service *banking.Service, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{Service: service, Logger: logger}
}

func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	req := banking.ListRequest{}
	if params.AccountId != nil {
		req.AccountID = *params.AccountId
	}
	if params.Type != nil {
		req.Direction = models.Direction(*params.Type)
	}
	if params.Category != nil {
		req.Category = *params.Category
	}
	if params.Limit != nil {
		req.Limit = *params.Limit
	}
	if params.Skip != nil {
		req.Skip = *params.Skip
	}

	p, _ := auth.PrincipalFrom(r.Context())
	entries, err := h.Service.ListTransactions(r.Context(), p, req)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiTransactions(entries))
}

func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request, transactionId string) {
	p, _ := auth.PrincipalFrom(r.Context())
	entry, err := h.Service.GetTransaction(r.Context(), p, transactionId)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiTransaction(entry))
}

// GetTransactionsByReference returns the caller's entries sharing a reference, such as both legs of a transfer.
func (h *LedgerHandler) GetTransactionsByReference(w http.ResponseWriter, r *http.Request, reference string) {
	p, _ := auth.PrincipalFrom(r.Context())
	entries, err := h.Service.GetByReference(r.Context(), p, reference)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiTransactions(entries))
}

func (h *LedgerHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	summary, err := h.Service.Summary(r.Context(), p)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiSummary(summary))
}
