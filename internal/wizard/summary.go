package wizard

import (
	"strings"

	"github.com/northwind-msp/portal-api/internal/model"
)

// Review-step display limits. Selections beyond these are elided with an
// ellipsis rather than listed in full.
const (
	summaryMaxGoals    = 2
	summaryMaxServices = 3
)

// ReviewSummary is the read-only digest shown on the review step. It is
// derived from the answers and never mutates them.
type ReviewSummary struct {
	Goals            string `json:"goals"`
	GoalCount        int    `json:"goal_count"`
	OptionalServices string `json:"optional_services"`
	ServiceCount     int    `json:"service_count"`
	PreferredContact string `json:"preferred_contact"`
}

// Review computes the summary for the review step.
func Review(answers *model.AnswerSet) ReviewSummary {
	goals := answers.Members(model.FieldGoals)
	services := answers.Members(model.FieldOptionalServices)
	return ReviewSummary{
		Goals:            truncateList(goals, summaryMaxGoals),
		GoalCount:        len(goals),
		OptionalServices: truncateList(services, summaryMaxServices),
		ServiceCount:     len(services),
		PreferredContact: answers.PreferredContact,
	}
}

// truncateList joins the first max items and appends an ellipsis when
// items were elided.
func truncateList(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:max], ", ") + " …"
}
