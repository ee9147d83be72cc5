package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/northwind-msp/portal-api/internal/catalog"
	"github.com/northwind-msp/portal-api/internal/identity"
	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/portal"
	"github.com/northwind-msp/portal-api/internal/store"
	"github.com/northwind-msp/portal-api/internal/submit"
	"github.com/northwind-msp/portal-api/internal/wizard"
	"github.com/northwind-msp/portal-api/pkg/accounts"
)

// api wires the HTTP surface to the domain services. The wizard routes
// are public (prospects have no account yet); everything under /api/portal
// requires a verified session.
type api struct {
	wizard   *wizard.Controller
	pipeline *submit.Pipeline
	portal   *portal.Service
	resolver *identity.Resolver
	store    store.Store
	auth     accounts.Client
	catalog  *catalog.Catalog
}

func newAPI(w *wizard.Controller, p *submit.Pipeline, ps *portal.Service, r *identity.Resolver, st store.Store, auth accounts.Client, cat *catalog.Catalog) *api {
	return &api{wizard: w, pipeline: p, portal: ps, resolver: r, store: st, auth: auth, catalog: cat}
}

func (a *api) routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", a.handleHealth)
	r.Get("/api/catalog", a.handleCatalog)

	r.Route("/api/wizard", func(r chi.Router) {
		r.Post("/", a.handleWizardStart)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", a.handleWizardGet)
			r.Post("/answers", a.handleWizardAnswer)
			r.Post("/next", a.handleWizardNext)
			r.Post("/previous", a.handleWizardPrevious)
			r.Post("/reset", a.handleWizardReset)
			r.Get("/review", a.handleWizardReview)
			r.Post("/submit", a.handleWizardSubmit)
		})
	})

	r.Route("/api/portal", func(r chi.Router) {
		r.Use(a.requireSession)
		r.Get("/", a.handleOverview)
		r.Get("/identity", a.handleIdentity)
		r.Get("/services", a.handleServices)
		r.Get("/documents", a.handleDocuments)
		r.Get("/billing", a.handleBilling)
		r.Route("/impersonate", func(r chi.Router) {
			r.Get("/", a.handleImpersonateCurrent)
			r.Post("/", a.handleImpersonateStart)
			r.Delete("/", a.handleImpersonateStop)
		})
	})

	return r
}

type ctxKey int

const sessionKey ctxKey = 0

// requireSession verifies the bearer token against the hosted auth
// platform on every request. Sessions are never cached server-side.
func (a *api) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := a.auth.VerifySession(r.Context(), token)
		if err != nil {
			if eris.Is(err, accounts.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "session not authorized")
				return
			}
			zap.L().Error("session verification failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "auth platform unavailable")
			return
		}

		sess := model.Session{
			UserID:   user.ID,
			Email:    user.Email,
			Role:     user.Role,
			FullName: user.FullName,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) model.Session {
	sess, _ := r.Context().Value(sessionKey).(model.Session)
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain errors onto HTTP statuses. Validation
// failures carry the missing field labels so the form can highlight them.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *wizard.ValidationError
	switch {
	case eris.As(err, &ve):
		labels := make([]string, len(ve.Missing))
		for i, f := range ve.Missing {
			labels[i] = f.Label()
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          ve.Error(),
			"step":           ve.Step,
			"missing_fields": labels,
		})
	case eris.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case eris.Is(err, store.ErrSubmitInFlight), eris.Is(err, wizard.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "a submission is already in progress")
	case eris.Is(err, identity.ErrNotAdmin):
		writeError(w, http.StatusForbidden, "admin role required")
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog)
}
