package wizard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/store"
)

type memSessionStore struct {
	sessions map[string]*model.WizardSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*model.WizardSession)}
}

func (m *memSessionStore) CreateWizardSession(context.Context) (*model.WizardSession, error) {
	sess := &model.WizardSession{ID: uuid.New().String()}
	cp := *sess
	m.sessions[sess.ID] = &cp
	return sess, nil
}

func (m *memSessionStore) GetWizardSession(_ context.Context, id string) (*model.WizardSession, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, eris.Wrapf(store.ErrNotFound, "mem: wizard session %s", id)
	}
	cp := *sess
	return &cp, nil
}

func (m *memSessionStore) SaveWizardSession(_ context.Context, sess *model.WizardSession) error {
	if _, ok := m.sessions[sess.ID]; !ok {
		return eris.Wrapf(store.ErrNotFound, "mem: wizard session %s", sess.ID)
	}
	cp := *sess
	m.sessions[sess.ID] = &cp
	return nil
}

// completeThrough fills every required field for steps 0..upTo.
func completeThrough(t *testing.T, c *Controller, id string, upTo int) {
	t.Helper()
	ctx := context.Background()

	fill := map[int]func(){
		model.StepPersonal: func() {
			for f, v := range map[model.Field]string{
				model.FieldFullName: "Jane Doe", model.FieldEmail: "jane@acme.test",
				model.FieldPhone: "555-0100", model.FieldContactTime: "Mornings",
			} {
				_, err := c.SetText(ctx, id, f, v)
				require.NoError(t, err)
			}
		},
		model.StepBusiness: func() {
			for f, v := range map[model.Field]string{
				model.FieldBusinessName: "Acme Plumbing", model.FieldIndustry: "Trades",
				model.FieldDescription: "Residential plumbing", model.FieldOfferings: "Repairs",
				model.FieldAudience: "Homeowners",
			} {
				_, err := c.SetText(ctx, id, f, v)
				require.NoError(t, err)
			}
		},
		model.StepGoals: func() {
			_, err := c.SetText(ctx, id, model.FieldReferralSource, "Google")
			require.NoError(t, err)
		},
	}

	for step := 0; step <= upTo; step++ {
		if f, ok := fill[step]; ok {
			f()
		}
	}
}

func TestControllerStartAtStepZero(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	sess, err := c.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, sess.Step)
	assert.False(t, sess.Submitting)
	assert.Equal(t, model.AnswerSet{}, sess.Answers)
}

func TestControllerNextBlockedByValidation(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	_, err = c.Next(ctx, sess.ID)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, eris.As(err, &verr))
	assert.Equal(t, 0, verr.Step)

	got, err := c.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Step, "blocked transition must not move the step")
}

func TestControllerSequentialNavigation(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	completeThrough(t, c, sess.ID, model.StepGoals)

	// Steps 2, 4, 5 have no required fields, so a fully-filled form
	// walks forward one step at a time to review.
	for want := 1; want <= model.StepReview; want++ {
		got, err := c.Next(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Step)
	}

	// Clamped at the last step.
	got, err := c.Next(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StepReview, got.Step)
}

func TestControllerPreviousNeverValidates(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	completeThrough(t, c, sess.ID, model.StepPersonal)
	_, err = c.Next(ctx, sess.ID)
	require.NoError(t, err)

	// Blank a required field for step 0, then go back: backward moves
	// are unconditional.
	_, err = c.SetText(ctx, sess.ID, model.FieldFullName, "")
	require.NoError(t, err)

	got, err := c.Previous(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Step)

	// Clamped at step 0.
	got, err = c.Previous(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Step)
}

func TestControllerToggleIsIdempotentPair(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	got, err := c.Toggle(ctx, sess.ID, model.FieldGoals, "More leads")
	require.NoError(t, err)
	assert.True(t, got.Answers.Has(model.FieldGoals, "More leads"))

	got, err = c.Toggle(ctx, sess.ID, model.FieldGoals, "More leads")
	require.NoError(t, err)
	assert.False(t, got.Answers.Has(model.FieldGoals, "More leads"))
}

func TestControllerResetClearsEverything(t *testing.T) {
	t.Parallel()

	c := NewController(newMemSessionStore())
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	completeThrough(t, c, sess.ID, model.StepPersonal)
	_, err = c.Next(ctx, sess.ID)
	require.NoError(t, err)
	_, err = c.Toggle(ctx, sess.ID, model.FieldGoals, "Sell online")
	require.NoError(t, err)

	got, err := c.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Step)
	assert.Equal(t, model.AnswerSet{}, got.Answers)
}

func TestControllerRejectsMutationWhileSubmitting(t *testing.T) {
	t.Parallel()

	st := newMemSessionStore()
	c := NewController(st)
	ctx := context.Background()
	sess, err := c.Start(ctx)
	require.NoError(t, err)

	st.sessions[sess.ID].Submitting = true

	_, err = c.SetText(ctx, sess.ID, model.FieldFullName, "Jane")
	assert.True(t, eris.Is(err, ErrSubmissionInFlight))
	_, err = c.Next(ctx, sess.ID)
	assert.True(t, eris.Is(err, ErrSubmissionInFlight))
	_, err = c.Previous(ctx, sess.ID)
	assert.True(t, eris.Is(err, ErrSubmissionInFlight))
	_, err = c.Reset(ctx, sess.ID)
	assert.True(t, eris.Is(err, ErrSubmissionInFlight))
}
