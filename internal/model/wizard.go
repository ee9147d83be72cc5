package model

import "time"

// WizardStepCount is the number of steps in the intake wizard.
const WizardStepCount = 7

// Wizard step indexes. Navigation is strictly sequential; there is no
// jump-to-step operation.
const (
	StepPersonal = iota
	StepBusiness
	StepDesign
	StepGoals
	StepAdditional
	StepServices
	StepReview
)

// WizardSession is one client's in-progress intake wizard. Step only ever
// moves by one via next/previous and stays within [0, WizardStepCount-1].
// Submitting is true only between submit invocation and its terminal
// resolution; the store flips it with a conditional update so a second
// submit cannot start while one is in flight.
type WizardSession struct {
	ID         string    `json:"id"`
	Step       int       `json:"step"`
	Submitting bool      `json:"submitting"`
	Answers    AnswerSet `json:"answers"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
