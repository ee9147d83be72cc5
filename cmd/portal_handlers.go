package main

import (
	"encoding/json"
	"net/http"

	"github.com/northwind-msp/portal-api/internal/model"
)

func (a *api) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := a.portal.Overview(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (a *api) handleIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := a.portal.Identity(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (a *api) handleServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.portal.Services(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if services == nil {
		services = []model.ServiceRecord{}
	}
	writeJSON(w, http.StatusOK, services)
}

func (a *api) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := a.portal.Documents(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if docs == nil {
		docs = []model.SupportDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (a *api) handleBilling(w http.ResponseWriter, r *http.Request) {
	bp, err := a.portal.Billing(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

func (a *api) handleImpersonateCurrent(w http.ResponseWriter, r *http.Request) {
	target, err := a.resolver.Current(r.Context(), sessionFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"target": target})
}

func (a *api) handleImpersonateStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	account, err := a.store.GetClientAccount(r.Context(), req.ClientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	target := model.ImpersonationTarget{
		ID:           account.ID,
		CompanyName:  account.CompanyName,
		ContactEmail: account.ContactEmail,
		ContactName:  account.ContactName,
	}
	if err := a.resolver.Start(r.Context(), sessionFrom(r), target); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"target": target})
}

func (a *api) handleImpersonateStop(w http.ResponseWriter, r *http.Request) {
	if err := a.resolver.Stop(r.Context(), sessionFrom(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}
