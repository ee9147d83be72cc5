package submit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/pkg/ticket"
)

// Status is the overall result of one submission attempt.
type Status string

const (
	// StatusSuccess: lead persisted and ticket created.
	StatusSuccess Status = "success"
	// StatusPartialSuccess: lead persisted; the follow-up ticket did not
	// happen. Still counts as an accepted submission.
	StatusPartialSuccess Status = "partial_success"
	// StatusFailure: nothing persisted; the user can correct and resubmit.
	StatusFailure Status = "failure"
)

// Reason narrows a non-success status to its cause.
type Reason string

const (
	ReasonConsentMissing    Reason = "consent_missing"
	ReasonPersistFailed     Reason = "persist_failed"
	ReasonTicketError       Reason = "ticket_error"
	ReasonTicketUnreachable Reason = "ticket_unreachable"
)

// Outcome is the typed result of a submission attempt. Status and
// Reason carry the machine-readable result; Message is the notification
// text shown to the user.
type Outcome struct {
	Status    Status `json:"status"`
	Reason    Reason `json:"reason,omitempty"`
	TicketKey string `json:"ticket_key,omitempty"`
	Message   string `json:"message"`
}

// Accepted reports whether the submission was durably recorded,
// regardless of what happened to the follow-up ticket.
func (o Outcome) Accepted() bool {
	return o.Status == StatusSuccess || o.Status == StatusPartialSuccess
}

// PipelineStore is the slice of the persistence layer the pipeline needs.
type PipelineStore interface {
	BeginSubmit(ctx context.Context, id string) (*model.WizardSession, error)
	SaveWizardSession(ctx context.Context, sess *model.WizardSession) error
	CreateLead(ctx context.Context, lead *model.Lead) error
	SetLeadTicketKey(ctx context.Context, leadID, ticketKey string) error
}

// Pipeline runs the two-phase submission: a primary persistence write,
// then a best-effort helpdesk ticket. The secondary phase never
// downgrades a successful primary write.
type Pipeline struct {
	store   PipelineStore
	tickets ticket.Client
}

// NewPipeline creates a Pipeline.
func NewPipeline(store PipelineStore, tickets ticket.Client) *Pipeline {
	return &Pipeline{store: store, tickets: tickets}
}

// Submit runs the full pipeline for one wizard session.
//
// The returned error is reserved for infrastructure problems where no
// submission attempt happened at all: an unknown session, or a second
// click racing an in-flight submission (store.ErrSubmitInFlight). Every
// attempt that actually ran reports through the Outcome, including
// failures the user must retry.
func (p *Pipeline) Submit(ctx context.Context, sessionID string) (Outcome, error) {
	// Check-and-set before any other work: the conditional update in
	// BeginSubmit is what makes a double click produce one write.
	sess, err := p.store.BeginSubmit(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	if !sess.Answers.ConsentContact || !sess.Answers.ConsentTerms {
		p.release(ctx, sess)
		return Outcome{
			Status:  StatusFailure,
			Reason:  ReasonConsentMissing,
			Message: "Please confirm both consent checkboxes before submitting.",
		}, nil
	}

	lead := Normalize(&sess.Answers)
	if err := p.store.CreateLead(ctx, lead); err != nil {
		zap.L().Error("lead write failed",
			zap.String("session_id", sess.ID), zap.Error(err))
		// Answers stay untouched so the user can resubmit as-is.
		p.release(ctx, sess)
		return Outcome{
			Status:  StatusFailure,
			Reason:  ReasonPersistFailed,
			Message: "We could not save your request. Please try submitting again.",
		}, nil
	}

	outcome := p.notify(ctx, sess, lead)

	// The submission is accepted from here on. Clear the wizard back to
	// its defaults whatever happened to the ticket.
	sess.Answers.Reset()
	sess.Step = 0
	p.release(ctx, sess)

	return outcome, nil
}

// notify attempts the best-effort secondary ticket. Every failure mode
// is caught here; none of them propagates as a pipeline error.
func (p *Pipeline) notify(ctx context.Context, sess *model.WizardSession, lead *model.Lead) Outcome {
	t, err := p.tickets.Create(ctx, ticket.CreateRequest{
		Subject:        lead.Subject,
		Description:    lead.Message,
		RequesterName:  fmt.Sprintf("%s %s", lead.FirstName, lead.LastName),
		RequesterEmail: lead.Email,
	})
	switch {
	case err == nil:
		if serr := p.store.SetLeadTicketKey(ctx, lead.ID, t.Key); serr != nil {
			zap.L().Warn("failed to record ticket key on lead",
				zap.String("lead_id", lead.ID), zap.Error(serr))
		}
		return Outcome{
			Status:    StatusSuccess,
			TicketKey: t.Key,
			Message:   fmt.Sprintf("Request submitted. Your ticket reference is %s.", t.Key),
		}
	case ticket.IsAPIError(err):
		zap.L().Warn("ticket provider rejected follow-up ticket",
			zap.String("session_id", sess.ID), zap.Error(err))
		return Outcome{
			Status:  StatusPartialSuccess,
			Reason:  ReasonTicketError,
			Message: "Request saved, but the follow-up ticket had an issue. Our team has been notified.",
		}
	default:
		zap.L().Warn("ticket provider unreachable",
			zap.String("session_id", sess.ID), zap.Error(err))
		return Outcome{
			Status:  StatusPartialSuccess,
			Reason:  ReasonTicketUnreachable,
			Message: "Request saved. Our team will follow up manually.",
		}
	}
}

// release clears the submitting flag and persists the session. A save
// failure here cannot change the outcome; it only delays the unlock
// until the row is touched again.
func (p *Pipeline) release(ctx context.Context, sess *model.WizardSession) {
	sess.Submitting = false
	if err := p.store.SaveWizardSession(ctx, sess); err != nil {
		zap.L().Error("failed to clear submitting flag",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
}
