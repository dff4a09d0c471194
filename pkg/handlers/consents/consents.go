package consents

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/consent"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/mapping"
)

// ConsentsHandler holds the dependencies for consent handlers.
type ConsentsHandler struct {
	Service *consent.Service
	Logger  *slog.Logger
}

// NewConsentsHandler creates a new ConsentsHandler.
func NewConsentsHandler(service *consent.Service, logger *slog.Logger) *ConsentsHandler {
	return &ConsentsHandler{Service: service, Logger: logger}
}

// GrantConsent records a new granted consent.
func (h *ConsentsHandler) GrantConsent(w http.ResponseWriter, r *http.Request) {
	var newConsent api.NewConsent
	if err := response.Decode(r, &newConsent); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	req := consent.GrantRequest{
		ConsentType: newConsent.ConsentType,
		Purpose:     newConsent.Purpose,
		DataTypes:   newConsent.DataTypes,
		ExpiresAt:   newConsent.ExpiresAt,
	}
	if newConsent.Version != nil {
		req.Version = *newConsent.Version
	}

	p, _ := auth.PrincipalFrom(r.Context())
	record, err := h.Service.Grant(r.Context(), p, req)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, mapping.ToApiConsent(record))
}

// ListConsents returns the caller's consent history, newest first.
func (h *ConsentsHandler) ListConsents(w http.ResponseWriter, r *http.Request, params api.ListConsentsParams) {
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	p, _ := auth.PrincipalFrom(r.Context())
	records, err := h.Service.List(r.Context(), p, limit)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiConsents(records))
}

func (h *ConsentsHandler) GetConsent(w http.ResponseWriter, r *http.Request, consentId string) {
	p, _ := auth.PrincipalFrom(r.Context())
	record, err := h.Service.Get(r.Context(), p, consentId)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiConsent(record))
}

// UpdateConsent revokes or withdraws a granted consent.
func (h *ConsentsHandler) UpdateConsent(w http.ResponseWriter, r *http.Request, consentId string) {
	var action api.ConsentAction
	if err := response.Decode(r, &action); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	reason := ""
	if action.Reason != nil {
		reason = *action.Reason
	}

	p, _ := auth.PrincipalFrom(r.Context())
	record, err := h.Service.ApplyAction(r.Context(), p, consentId, consent.Action(action.Action), reason)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiConsent(record))
}

// DeleteConsent hard-deletes a consent that is no longer granted.
func (h *ConsentsHandler) DeleteConsent(w http.ResponseWriter, r *http.Request, consentId string) {
	p, _ := auth.PrincipalFrom(r.Context())
	if err := h.Service.Delete(r.Context(), p, consentId); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"id": consentId, "message": "Consent record deleted"})
}
