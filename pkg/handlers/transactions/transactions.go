package transactions

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/mapping"
)

// TransactionsHandler holds the dependencies for balance-mutating handlers.
type TransactionsHandler struct {
	Service *banking.Service
	Logger  *slog.Logger
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(service *banking.Service, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{Service: service, Logger: logger}
}

// CreateTransaction posts a single credit or debit.
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var newTx api.NewTransaction
	if err := response.Decode(r, &newTx); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	result, err := h.Service.PostTransaction(r.Context(), p, mapping.ToDomainPostRequest(&newTx))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, mapping.ToApiPostingResult(result))
}

// CreateTransfer moves money between two accounts in one atomic write.
func (h *TransactionsHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var newTransfer api.NewTransfer
	if err := response.Decode(r, &newTransfer); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	result, err := h.Service.Transfer(r.Context(), p, mapping.ToDomainTransferRequest(&newTransfer))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, mapping.ToApiTransferResult(result))
}
