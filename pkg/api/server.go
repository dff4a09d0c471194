package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /accounts)
	ListAccounts(w http.ResponseWriter, r *http.Request)
	// (POST /accounts)
	OpenAccount(w http.ResponseWriter, r *http.Request)
	// (GET /accounts/{accountId})
	GetAccount(w http.ResponseWriter, r *http.Request, accountId string)
	// (DELETE /accounts/{accountId})
	CloseAccount(w http.ResponseWriter, r *http.Request, accountId string)

	// (GET /transactions)
	ListTransactions(w http.ResponseWriter, r *http.Request, params ListTransactionsParams)
	// (POST /transactions)
	CreateTransaction(w http.ResponseWriter, r *http.Request)
	// (POST /transactions/transfer)
	CreateTransfer(w http.ResponseWriter, r *http.Request)
	// (GET /transactions/summary)
	GetTransactionSummary(w http.ResponseWriter, r *http.Request)
	// (GET /transactions/reference/{reference})
	GetTransactionsByReference(w http.ResponseWriter, r *http.Request, reference string)
	// (GET /transactions/{transactionId})
	GetTransaction(w http.ResponseWriter, r *http.Request, transactionId string)

	// (GET /consents)
	ListConsents(w http.ResponseWriter, r *http.Request, params ListConsentsParams)
	// (POST /consents)
	GrantConsent(w http.ResponseWriter, r *http.Request)
	// (GET /consents/{consentId})
	GetConsent(w http.ResponseWriter, r *http.Request, consentId string)
	// (PATCH /consents/{consentId})
	UpdateConsent(w http.ResponseWriter, r *http.Request, consentId string)
	// (DELETE /consents/{consentId})
	DeleteConsent(w http.ResponseWriter, r *http.Request, consentId string)

	// (GET /privacy/data-attributes)
	GetDataAttributes(w http.ResponseWriter, r *http.Request)
	// (GET /privacy/permissions)
	GetPermissions(w http.ResponseWriter, r *http.Request)
	// (PUT /privacy/permissions)
	UpdatePermissions(w http.ResponseWriter, r *http.Request)
	// (GET /privacy/score)
	GetPrivacyScore(w http.ResponseWriter, r *http.Request, params GetPrivacyScoreParams)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError is reported when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) ListAccounts(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.ListAccounts))
}

func (siw *ServerInterfaceWrapper) OpenAccount(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.OpenAccount))
}

func (siw *ServerInterfaceWrapper) GetAccount(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetAccount(w, r, accountId)
	}))
}

func (siw *ServerInterfaceWrapper) CloseAccount(w http.ResponseWriter, r *http.Request) {
	var accountId string
	if !siw.pathParam(w, r, "accountId", &accountId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CloseAccount(w, r, accountId)
	}))
}

func (siw *ServerInterfaceWrapper) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var params ListTransactionsParams
	if !siw.queryParam(w, r, "accountId", &params.AccountId) ||
		!siw.queryParam(w, r, "type", &params.Type) ||
		!siw.queryParam(w, r, "category", &params.Category) ||
		!siw.queryParam(w, r, "limit", &params.Limit) ||
		!siw.queryParam(w, r, "skip", &params.Skip) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTransactions(w, r, params)
	}))
}

func (siw *ServerInterfaceWrapper) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.CreateTransaction))
}

func (siw *ServerInterfaceWrapper) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.CreateTransfer))
}

func (siw *ServerInterfaceWrapper) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetTransactionSummary))
}

func (siw *ServerInterfaceWrapper) GetTransactionsByReference(w http.ResponseWriter, r *http.Request) {
	var reference string
	if !siw.pathParam(w, r, "reference", &reference) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTransactionsByReference(w, r, reference)
	}))
}

func (siw *ServerInterfaceWrapper) GetTransaction(w http.ResponseWriter, r *http.Request) {
	var transactionId string
	if !siw.pathParam(w, r, "transactionId", &transactionId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTransaction(w, r, transactionId)
	}))
}

func (siw *ServerInterfaceWrapper) ListConsents(w http.ResponseWriter, r *http.Request) {
	var params ListConsentsParams
	if !siw.queryParam(w, r, "limit", &params.Limit) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListConsents(w, r, params)
	}))
}

func (siw *ServerInterfaceWrapper) GrantConsent(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GrantConsent))
}

func (siw *ServerInterfaceWrapper) GetConsent(w http.ResponseWriter, r *http.Request) {
	var consentId string
	if !siw.pathParam(w, r, "consentId", &consentId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetConsent(w, r, consentId)
	}))
}

func (siw *ServerInterfaceWrapper) UpdateConsent(w http.ResponseWriter, r *http.Request) {
	var consentId string
	if !siw.pathParam(w, r, "consentId", &consentId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateConsent(w, r, consentId)
	}))
}

func (siw *ServerInterfaceWrapper) DeleteConsent(w http.ResponseWriter, r *http.Request) {
	var consentId string
	if !siw.pathParam(w, r, "consentId", &consentId) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteConsent(w, r, consentId)
	}))
}

func (siw *ServerInterfaceWrapper) GetDataAttributes(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetDataAttributes))
}

func (siw *ServerInterfaceWrapper) GetPermissions(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetPermissions))
}

func (siw *ServerInterfaceWrapper) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.UpdatePermissions))
}

func (siw *ServerInterfaceWrapper) GetPrivacyScore(w http.ResponseWriter, r *http.Request) {
	var params GetPrivacyScoreParams
	if !siw.queryParam(w, r, "refresh", &params.Refresh) {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetPrivacyScore(w, r, params)
	}))
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux mounts si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions mounts si on options.BaseRouter, or a new router when none is given.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	base := options.BaseURL
	r.Get(base+"/accounts", wrapper.ListAccounts)
	r.Post(base+"/accounts", wrapper.OpenAccount)
	r.Get(base+"/accounts/{accountId}", wrapper.GetAccount)
	r.Delete(base+"/accounts/{accountId}", wrapper.CloseAccount)

	r.Get(base+"/transactions", wrapper.ListTransactions)
	r.Post(base+"/transactions", wrapper.CreateTransaction)
	r.Post(base+"/transactions/transfer", wrapper.CreateTransfer)
	r.Get(base+"/transactions/summary", wrapper.GetTransactionSummary)
	r.Get(base+"/transactions/reference/{reference}", wrapper.GetTransactionsByReference)
	r.Get(base+"/transactions/{transactionId}", wrapper.GetTransaction)

	r.Get(base+"/consents", wrapper.ListConsents)
	r.Post(base+"/consents", wrapper.GrantConsent)
	r.Get(base+"/consents/{consentId}", wrapper.GetConsent)
	r.Patch(base+"/consents/{consentId}", wrapper.UpdateConsent)
	r.Delete(base+"/consents/{consentId}", wrapper.DeleteConsent)

	r.Get(base+"/privacy/data-attributes", wrapper.GetDataAttributes)
	r.Get(base+"/privacy/permissions", wrapper.GetPermissions)
	r.Put(base+"/privacy/permissions", wrapper.UpdatePermissions)
	r.Get(base+"/privacy/score", wrapper.GetPrivacyScore)

	return r
}
