// Package portal serves the client portal tabs: services, support
// documents, and billing. Every fetch resolves the effective identity
// first, so an admin impersonating a client sees exactly that client's
// data.
package portal

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/northwind-msp/portal-api/internal/identity"
	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/store"
	"github.com/northwind-msp/portal-api/pkg/billing"
	"github.com/northwind-msp/portal-api/pkg/notion"
)

// DataStore is the slice of the persistence layer the portal needs.
type DataStore interface {
	GetClientByEmail(ctx context.Context, email string) (*model.ClientAccount, error)
	ListServices(ctx context.Context, clientEmail string) ([]model.ServiceRecord, error)
}

// Service answers portal tab queries for one effective identity.
type Service struct {
	store    DataStore
	resolver *identity.Resolver
	notion   notion.Client
	notionDB string
	billing  billing.Client
}

// NewService creates a portal Service.
func NewService(st DataStore, resolver *identity.Resolver, nc notion.Client, notionDB string, bc billing.Client) *Service {
	return &Service{
		store:    st,
		resolver: resolver,
		notion:   nc,
		notionDB: notionDB,
		billing:  bc,
	}
}

// Identity resolves the effective identity for one request. Handlers
// call this per request and never cache the result.
func (s *Service) Identity(ctx context.Context, sess model.Session) (model.EffectiveIdentity, error) {
	return s.resolver.Resolve(ctx, sess)
}

// Services lists the managed services for the effective identity.
func (s *Service) Services(ctx context.Context, sess model.Session) ([]model.ServiceRecord, error) {
	id, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.store.ListServices(ctx, id.DisplayEmail)
}

// Billing mints a hosted billing portal session for the effective
// identity. An identity with no billing customer on file gets
// OnFile=false and no URL rather than an error.
func (s *Service) Billing(ctx context.Context, sess model.Session) (*model.BillingPortal, error) {
	id, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetClientByEmail(ctx, id.DisplayEmail)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return &model.BillingPortal{}, nil
		}
		return nil, err
	}
	if account.BillingCustomerID == "" {
		return &model.BillingPortal{}, nil
	}

	ps, err := s.billing.CreatePortalSession(ctx, account.BillingCustomerID)
	if err != nil {
		if eris.Is(err, billing.ErrNoCustomer) {
			return &model.BillingPortal{}, nil
		}
		return nil, err
	}
	return &model.BillingPortal{OnFile: true, URL: ps.URL}, nil
}
