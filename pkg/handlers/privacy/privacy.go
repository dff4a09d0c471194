package privacy

import (
	"log/slog"
	"net/http"

	"github.com/chris/ethicalbank/pkg/api"
	"github.com/chris/ethicalbank/pkg/auth"
	"github.com/chris/ethicalbank/pkg/handlers/response"
	"github.com/chris/ethicalbank/pkg/mapping"
	privacysvc "github.com/chris/ethicalbank/pkg/privacy"
)

// PrivacyHandler holds the dependencies for data-access permission handlers.
type PrivacyHandler struct {
	Service *privacysvc.Service
	Logger  *slog.Logger
}

// NewPrivacyHandler creates a new PrivacyHandler.
func NewPrivacyHandler(service *privacysvc.Service, logger *slog.Logger) *PrivacyHandler {
	return &PrivacyHandler{Service: service, Logger: logger}
}

// GetDataAttributes lists every attribute a user can allow or deny.
func (h *PrivacyHandler) GetDataAttributes(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, mapping.ToApiDataAttributes(privacysvc.Catalog()))
}

func (h *PrivacyHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	perms, err := h.Service.GetPermissions(r.Context(), p)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiPermissions(perms))
}

func (h *PrivacyHandler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var update api.PermissionsUpdate
	if err := response.Decode(r, &update); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	perms, err := h.Service.UpdatePermissions(r.Context(), p, mapping.ToDomainPermissionUpdates(&update))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiPermissions(perms))
}

func (h *PrivacyHandler) GetPrivacyScore(w http.ResponseWriter, r *http.Request, params api.GetPrivacyScoreParams) {
	refresh := params.Refresh != nil && *params.Refresh

	p, _ := auth.PrincipalFrom(r.Context())
	score, err := h.Service.PrivacyScore(r.Context(), p, refresh)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	response.JSON(w, http.StatusOK, mapping.ToApiPrivacyScore(score))
}
