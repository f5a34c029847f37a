package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type TenantHandler struct {
	tenantService services.TenantService
}

func NewTenantHandler(ts services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: ts}
}

func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTenantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(r.Context(), scopeFromRequest(r), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) GetTenantByID(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tenant, err := h.tenantService.GetTenantByID(r.Context(), scopeFromRequest(r), tenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenantService.ListTenants(r.Context(), scopeFromRequest(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenants": tenants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tenantService.DeleteTenant(r.Context(), scopeFromRequest(r), tenantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
