package portal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/northwind-msp/portal-api/internal/model"
)

// Overview is the portal landing payload: every tab's data in one
// round trip. Tabs degrade independently; a failed source leaves its
// field nil and sets the matching entry in Errors.
type Overview struct {
	Identity  model.EffectiveIdentity `json:"identity"`
	Services  []model.ServiceRecord   `json:"services,omitempty"`
	Documents []model.SupportDocument `json:"documents,omitempty"`
	Billing   *model.BillingPortal    `json:"billing,omitempty"`
	Errors    map[string]string       `json:"errors,omitempty"`
}

// Overview fetches all portal tabs concurrently for the effective
// identity. Only an identity resolution failure is fatal; each tab
// failing alone is reported in Errors and the rest still render.
func (s *Service) Overview(ctx context.Context, sess model.Session) (*Overview, error) {
	id, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return nil, err
	}

	ov := &Overview{Identity: id}

	// Each goroutine owns its result slot and error slot; nothing is
	// shared, so no locking is needed.
	var servicesErr, documentsErr, billingErr error

	var g errgroup.Group
	g.Go(func() error {
		ov.Services, servicesErr = s.store.ListServices(ctx, id.DisplayEmail)
		return nil
	})
	g.Go(func() error {
		ov.Documents, documentsErr = s.Documents(ctx, sess)
		return nil
	})
	g.Go(func() error {
		ov.Billing, billingErr = s.Billing(ctx, sess)
		return nil
	})
	_ = g.Wait()

	errs := make(map[string]string)
	if servicesErr != nil {
		zap.L().Warn("overview: services fetch failed", zap.Error(servicesErr))
		errs["services"] = "services are temporarily unavailable"
		ov.Services = nil
	}
	if documentsErr != nil {
		zap.L().Warn("overview: documents fetch failed", zap.Error(documentsErr))
		errs["documents"] = "support documents are temporarily unavailable"
		ov.Documents = nil
	}
	if billingErr != nil {
		zap.L().Warn("overview: billing fetch failed", zap.Error(billingErr))
		errs["billing"] = "billing is temporarily unavailable"
		ov.Billing = nil
	}
	if len(errs) > 0 {
		ov.Errors = errs
	}
	return ov, nil
}
