// Package store persists wizard sessions, leads, client accounts and
// impersonation flags behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/northwind-msp/portal-api/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrSubmitInFlight is returned by BeginSubmit when the session is
// already submitting. It is the double-click guard: the flag flips with
// a conditional update, so only one caller wins.
var ErrSubmitInFlight = eris.New("store: submission already in flight")

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	FormType string `json:"form_type,omitempty"`
	Unsynced bool   `json:"unsynced,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the portal.
type Store interface {
	// Wizard sessions
	CreateWizardSession(ctx context.Context) (*model.WizardSession, error)
	GetWizardSession(ctx context.Context, id string) (*model.WizardSession, error)
	SaveWizardSession(ctx context.Context, sess *model.WizardSession) error
	// BeginSubmit atomically flips the session's submitting flag from
	// false to true and returns the session. ErrSubmitInFlight when the
	// flag was already set.
	BeginSubmit(ctx context.Context, id string) (*model.WizardSession, error)

	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	SetLeadTicketKey(ctx context.Context, leadID, ticketKey string) error
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	MarkLeadSynced(ctx context.Context, leadID, crmID string) error

	// Clients and services
	GetClientAccount(ctx context.Context, id string) (*model.ClientAccount, error)
	GetClientByEmail(ctx context.Context, email string) (*model.ClientAccount, error)
	ListServices(ctx context.Context, clientEmail string) ([]model.ServiceRecord, error)

	// Impersonation flags, stored raw. Parsing and the corrupt-flag
	// repair path live in internal/identity.
	SetImpersonationFlag(ctx context.Context, adminID string, raw []byte) error
	GetImpersonationFlag(ctx context.Context, adminID string) ([]byte, error)
	ClearImpersonationFlag(ctx context.Context, adminID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
