package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/banking"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/handlers/accounts"
	"github.com/chris/ethicalbank/pkg/handlers/consents"
	"github.com/chris/ethicalbank/pkg/handlers/ledger"
	"github.com/chris/ethicalbank/pkg/handlers/privacy"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/handlers/transactions"
	"github.com/chris/ethicalbank/pkg/metrics"
	appmiddleware "github.com/chris/ethicalbank/pkg/middleware"
	privacysvc "github.com/chris/ethicalbank/pkg/privacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// ApiHandler implements the server interface by composing the per-resource handlers.
type ApiHandler struct {
	*accounts.AccountsHandler
	*transactions.TransactionsHandler
	*ledger.LedgerHandler
	*consents.ConsentsHandler
	*privacy.PrivacyHandler
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// NewApiHandler wires every resource handler to its service.
func NewApiHandler(bank *banking.Service, consentSvc *consent.Service, privacySvc *privacysvc.Service, logger *slog.Logger) *ApiHandler {
	return &ApiHandler{
		AccountsHandler:     accounts.NewAccountsHandler(bank, logger),
		TransactionsHandler: transactions.NewTransactionsHandler(bank, logger),
		LedgerHandler:       ledger.NewLedgerHandler(bank, logger),
		ConsentsHandler:     consents.NewConsentsHandler(consentSvc, logger),
		PrivacyHandler:      privacy.NewPrivacyHandler(privacySvc, logger),
	}
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger      *slog.Logger
	JWTSecret   []byte
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTP
	MetricsPath string
}

// NewRouter mounts health, metrics and the authenticated API under /api.
func NewRouter(h api.ServerInterface, opts RouterOptions) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmiddleware.NewStructuredLogger(opts.Logger, opts.HTTPMetrics))
	router.Use(middleware.Recoverer)

	router.Get("/health", Health)
	if opts.Registry != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, metrics.Handler(opts.Registry))
	}

	onError := response.ErrorWriter(opts.Logger)
	router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret, onError))
		r.Use(appmiddleware.AnnotatePrincipal)
		api.HandlerWithOptions(h, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: onError,
		})
	})

	return router
}

// Health reports liveness. It is served without authentication.
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, api.Health{Status: "ok"})
}
