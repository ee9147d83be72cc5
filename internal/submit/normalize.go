// Package submit turns a completed wizard answer set into a durable
// lead record plus a best-effort helpdesk ticket.
package submit

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/northwind-msp/portal-api/internal/model"
)

var titleCaser = cases.Title(language.English)

// splitName splits a full name on the first space boundary. Everything
// after the first token joins into the last name, so "Jane Ann Doe"
// becomes ("Jane", "Ann Doe"). A single token leaves the last name empty.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	first = parts[0]
	if len(parts) == 2 {
		last = strings.TrimSpace(parts[1])
	}
	return cleanCase(first), cleanCase(last)
}

// cleanCase title-cases a name only when it arrived in a single case,
// which is the "jane doe" / "JANE DOE" form-filling habit. Mixed-case
// names like "McDonald" pass through untouched.
func cleanCase(name string) string {
	if name == "" {
		return name
	}
	lower := strings.ToLower(name)
	upper := strings.ToUpper(name)
	if name == lower || name == upper {
		return titleCaser.String(lower)
	}
	return name
}

// optional maps an empty answer to nil so the stored record
// distinguishes "not provided" from an empty string.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// messageSection appends a labeled block to the message blob when the
// value is non-empty.
func messageSection(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n\n", label, value)
}

// buildMessage flattens the long-form and multi-select answers into one
// human-readable blob for the lead record's free-text message field.
func buildMessage(a *model.AnswerSet) string {
	var b strings.Builder

	messageSection(&b, "Business description", a.Description)
	messageSection(&b, "Products / services", a.Offerings)
	messageSection(&b, "Target audience", a.Audience)
	messageSection(&b, "Domain", a.DomainName)
	messageSection(&b, "Hosting", a.HostingProvider)
	messageSection(&b, "Color preferences", strings.Join(a.ColorTags, ", "))
	messageSection(&b, "Color notes", a.ColorNotes)
	messageSection(&b, "Logo status", a.LogoStatus)
	messageSection(&b, "Requested pages", strings.Join(a.Pages, ", "))
	messageSection(&b, "Requested features", strings.Join(a.Features, ", "))
	messageSection(&b, "Current website", a.CurrentWebsite)
	messageSection(&b, "Social profiles", a.SocialProfiles)
	messageSection(&b, "Goals", strings.Join(a.Goals, ", "))
	messageSection(&b, "Biggest challenge", a.Challenge)
	messageSection(&b, "Heard about us via", a.ReferralSource)
	messageSection(&b, "Years in business", a.YearsInBusiness)
	messageSection(&b, "Optional services", strings.Join(a.OptionalServices, ", "))
	messageSection(&b, "Additional notes", a.Notes)
	messageSection(&b, "Preferred contact method", a.PreferredContact)

	return strings.TrimRight(b.String(), "\n")
}

// Normalize converts a wizard answer set into the lead record the store
// persists. Empty optional fields map to nil rather than empty strings.
func Normalize(a *model.AnswerSet) *model.Lead {
	first, last := splitName(a.FullName)

	subject := "Website project inquiry"
	if biz := strings.TrimSpace(a.BusinessName); biz != "" {
		subject = fmt.Sprintf("Website project inquiry - %s", biz)
	}

	return &model.Lead{
		FirstName:           first,
		LastName:            last,
		Email:               strings.TrimSpace(a.Email),
		Phone:               strings.TrimSpace(a.Phone),
		Company:             strings.TrimSpace(a.BusinessName),
		Subject:             subject,
		Message:             buildMessage(a),
		FormType:            model.FormTypeWizard,
		RequestConsultation: a.ConsentContact,
		SubscribeNewsletter: false,
		PreferredDate:       optional(a.ContactTime),
		EmployeeCount:       optional(a.EmployeeCount),
		Industry:            optional(a.Industry),
	}
}
