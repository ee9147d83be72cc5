package wizard

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/northwind-msp/portal-api/internal/model"
)

// ErrSubmissionInFlight is returned when a navigation or field mutation
// arrives while the session's submission is still resolving.
var ErrSubmissionInFlight = eris.New("wizard: submission in flight")

// SessionStore is the slice of the persistence layer the controller needs.
type SessionStore interface {
	CreateWizardSession(ctx context.Context) (*model.WizardSession, error)
	GetWizardSession(ctx context.Context, id string) (*model.WizardSession, error)
	SaveWizardSession(ctx context.Context, sess *model.WizardSession) error
}

// Controller governs wizard sessions: it owns step transitions and field
// mutations, and enforces that navigation is strictly sequential.
type Controller struct {
	store SessionStore
}

// NewController creates a Controller backed by the given session store.
func NewController(store SessionStore) *Controller {
	return &Controller{store: store}
}

// Start creates a fresh session at step 0 with default answers.
func (c *Controller) Start(ctx context.Context) (*model.WizardSession, error) {
	return c.store.CreateWizardSession(ctx)
}

// Get loads a session by ID.
func (c *Controller) Get(ctx context.Context, id string) (*model.WizardSession, error) {
	return c.store.GetWizardSession(ctx, id)
}

// load fetches a session and rejects mutations while a submission is
// resolving, since the pipeline is reading the answers.
func (c *Controller) load(ctx context.Context, id string) (*model.WizardSession, error) {
	sess, err := c.store.GetWizardSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Submitting {
		return nil, ErrSubmissionInFlight
	}
	return sess, nil
}

// SetText assigns a text field and persists the session.
func (c *Controller) SetText(ctx context.Context, id string, f model.Field, v string) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Answers.SetText(f, v)
	if err := c.store.SaveWizardSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetBool assigns a boolean field and persists the session.
func (c *Controller) SetBool(ctx context.Context, id string, f model.Field, v bool) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Answers.SetBool(f, v)
	if err := c.store.SaveWizardSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Toggle flips membership of v in the set field f and persists the session.
func (c *Controller) Toggle(ctx context.Context, id string, f model.Field, v string) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Answers.Toggle(f, v)
	if err := c.store.SaveWizardSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Next advances the session one step after the current step validates.
// A failed validation blocks the transition and is reported to the caller.
func (c *Controller) Next(ctx context.Context, id string) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step >= model.WizardStepCount-1 {
		return sess, nil
	}
	if verr := Validate(sess.Step, &sess.Answers); verr != nil {
		return nil, verr
	}
	sess.Step++
	if err := c.store.SaveWizardSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Previous moves the session one step back. Going backward never
// re-validates.
func (c *Controller) Previous(ctx context.Context, id string) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step > 0 {
		sess.Step--
		if err := c.store.SaveWizardSession(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// Reset returns the session to step 0 with default answers.
func (c *Controller) Reset(ctx context.Context, id string) (*model.WizardSession, error) {
	sess, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Answers.Reset()
	sess.Step = 0
	if err := c.store.SaveWizardSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
