package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/northwind-msp/portal-api/internal/model"
)

func TestReviewTruncation(t *testing.T) {
	t.Parallel()

	a := model.AnswerSet{
		Goals:            []string{"More leads", "Look professional", "Sell online"},
		OptionalServices: []string{"SEO", "Hosting", "Maintenance", "Branding"},
		PreferredContact: "Phone",
	}

	s := Review(&a)

	assert.Equal(t, "More leads, Look professional …", s.Goals)
	assert.Equal(t, 3, s.GoalCount)
	assert.Equal(t, "SEO, Hosting, Maintenance …", s.OptionalServices)
	assert.Equal(t, 4, s.ServiceCount)
	assert.Equal(t, "Phone", s.PreferredContact)
}

func TestReviewNoTruncationAtLimit(t *testing.T) {
	t.Parallel()

	a := model.AnswerSet{
		Goals:            []string{"More leads", "Sell online"},
		OptionalServices: []string{"SEO", "Hosting", "Maintenance"},
	}

	s := Review(&a)

	assert.Equal(t, "More leads, Sell online", s.Goals)
	assert.Equal(t, "SEO, Hosting, Maintenance", s.OptionalServices)
	assert.NotContains(t, s.Goals, "…")
	assert.NotContains(t, s.OptionalServices, "…")
}

func TestReviewEmptySelections(t *testing.T) {
	t.Parallel()

	s := Review(&model.AnswerSet{})

	assert.Empty(t, s.Goals)
	assert.Zero(t, s.GoalCount)
	assert.Empty(t, s.OptionalServices)
	assert.Zero(t, s.ServiceCount)
}

func TestReviewDoesNotMutateAnswers(t *testing.T) {
	t.Parallel()

	a := model.AnswerSet{
		Goals: []string{"a", "b", "c", "d"},
	}
	_ = Review(&a)
	assert.Equal(t, []string{"a", "b", "c", "d"}, a.Goals)
}
