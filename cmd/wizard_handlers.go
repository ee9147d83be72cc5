package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/wizard"
)

func (a *api) handleWizardStart(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Start(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (a *api) handleWizardGet(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// answerRequest carries one field update. Which value applies depends on
// the field's kind: free text, a checkbox, or a multi-select member to
// toggle.
type answerRequest struct {
	Field   string `json:"field"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
	Member  string `json:"member"`
}

func (a *api) handleWizardAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field, ok := model.ParseField(req.Field)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown field: "+req.Field)
		return
	}

	id := chi.URLParam(r, "sessionID")
	var (
		sess *model.WizardSession
		err  error
	)
	switch field.Kind() {
	case model.KindText:
		sess, err = a.wizard.SetText(r.Context(), id, field, req.Text)
	case model.KindBool:
		sess, err = a.wizard.SetBool(r.Context(), id, field, req.Checked)
	case model.KindSet:
		if req.Member == "" {
			writeError(w, http.StatusBadRequest, "member is required for "+req.Field)
			return
		}
		sess, err = a.wizard.Toggle(r.Context(), id, field, req.Member)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *api) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Next(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *api) handleWizardPrevious(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Previous(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *api) handleWizardReset(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *api) handleWizardReview(w http.ResponseWriter, r *http.Request) {
	sess, err := a.wizard.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizard.Review(&sess.Answers))
}

func (a *api) handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	outcome, err := a.pipeline.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
