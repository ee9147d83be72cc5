// Package wizard drives the multi-step intake form: per-step validation,
// sequential navigation, and the read-only review summary.
package wizard

import (
	"fmt"
	"strings"

	"github.com/northwind-msp/portal-api/internal/model"
)

// requiredFields maps each step to the fields that must be populated
// before the wizard may advance past it. Steps with an empty list are
// intentionally optional (design preferences, additional info, optional
// services); do not tighten these without a product decision.
var requiredFields = map[int][]model.Field{
	model.StepPersonal: {
		model.FieldFullName, model.FieldEmail, model.FieldPhone, model.FieldContactTime,
	},
	model.StepBusiness: {
		model.FieldBusinessName, model.FieldIndustry, model.FieldDescription,
		model.FieldOfferings, model.FieldAudience,
	},
	model.StepDesign:     {},
	model.StepGoals:      {model.FieldReferralSource},
	model.StepAdditional: {},
	model.StepServices:   {},
	model.StepReview: {
		model.FieldConsentContact, model.FieldConsentTerms, model.FieldPreferredContact,
	},
}

// RequiredFields returns the fields that must be populated to advance
// past the given step.
func RequiredFields(step int) []model.Field {
	return requiredFields[step]
}

// ValidationError reports which required fields block a step transition.
// It is always surfaced to the user; a blocked transition is never silent.
type ValidationError struct {
	Step    int
	Missing []model.Field
}

func (e *ValidationError) Error() string {
	labels := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		labels[i] = f.Label()
	}
	return fmt.Sprintf("step %d incomplete: please provide %s", e.Step, strings.Join(labels, ", "))
}

// Validate checks the step's required fields against the answers and
// returns nil when the wizard may advance.
func Validate(step int, answers *model.AnswerSet) *ValidationError {
	var missing []model.Field
	for _, f := range requiredFields[step] {
		if answers.Empty(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Missing: missing}
}

// CanAdvance reports whether every required field for the step is populated.
func CanAdvance(step int, answers *model.AnswerSet) bool {
	return Validate(step, answers) == nil
}
