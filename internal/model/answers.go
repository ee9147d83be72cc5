package model

import "fmt"

// AnswerSet holds every answer collected by the intake wizard for one
// in-progress submission. All fields default to the zero value; reset is
// all-or-nothing back to those defaults. Multi-select fields are ordered
// string sets mutated only through Toggle.
type AnswerSet struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ContactTime string `json:"contact_time"`

	BusinessName    string `json:"business_name"`
	Industry        string `json:"industry"`
	Description     string `json:"description"`
	Offerings       string `json:"offerings"`
	Audience        string `json:"audience"`
	DomainName      string `json:"domain_name"`
	HostingProvider string `json:"hosting_provider"`

	ColorTags  []string `json:"color_tags"`
	ColorNotes string   `json:"color_notes"`
	LogoStatus string   `json:"logo_status"`
	Pages      []string `json:"pages"`
	Features   []string `json:"features"`

	CurrentWebsite string   `json:"current_website"`
	SocialProfiles string   `json:"social_profiles"`
	Goals          []string `json:"goals"`
	Challenge      string   `json:"challenge"`
	ReferralSource string   `json:"referral_source"`

	Notes           string `json:"notes"`
	EmployeeCount   string `json:"employee_count"`
	YearsInBusiness string `json:"years_in_business"`

	OptionalServices []string `json:"optional_services"`

	ConsentContact   bool   `json:"consent_contact"`
	ConsentTerms     bool   `json:"consent_terms"`
	PreferredContact string `json:"preferred_contact"`
}

func (a *AnswerSet) textPtr(f Field) *string {
	switch f {
	case FieldFullName:
		return &a.FullName
	case FieldEmail:
		return &a.Email
	case FieldPhone:
		return &a.Phone
	case FieldContactTime:
		return &a.ContactTime
	case FieldBusinessName:
		return &a.BusinessName
	case FieldIndustry:
		return &a.Industry
	case FieldDescription:
		return &a.Description
	case FieldOfferings:
		return &a.Offerings
	case FieldAudience:
		return &a.Audience
	case FieldDomainName:
		return &a.DomainName
	case FieldHostingProvider:
		return &a.HostingProvider
	case FieldColorNotes:
		return &a.ColorNotes
	case FieldLogoStatus:
		return &a.LogoStatus
	case FieldCurrentWebsite:
		return &a.CurrentWebsite
	case FieldSocialProfiles:
		return &a.SocialProfiles
	case FieldChallenge:
		return &a.Challenge
	case FieldReferralSource:
		return &a.ReferralSource
	case FieldNotes:
		return &a.Notes
	case FieldEmployeeCount:
		return &a.EmployeeCount
	case FieldYearsInBusiness:
		return &a.YearsInBusiness
	case FieldPreferredContact:
		return &a.PreferredContact
	}
	return nil
}

func (a *AnswerSet) setPtr(f Field) *[]string {
	switch f {
	case FieldColorTags:
		return &a.ColorTags
	case FieldPages:
		return &a.Pages
	case FieldFeatures:
		return &a.Features
	case FieldGoals:
		return &a.Goals
	case FieldOptionalServices:
		return &a.OptionalServices
	}
	return nil
}

func (a *AnswerSet) boolPtr(f Field) *bool {
	switch f {
	case FieldConsentContact:
		return &a.ConsentContact
	case FieldConsentTerms:
		return &a.ConsentTerms
	}
	return nil
}

// SetText assigns a text field. Only the named field changes; no
// cross-field derivation happens. Panics if f is not a text field.
func (a *AnswerSet) SetText(f Field, v string) {
	p := a.textPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a text field", string(f)))
	}
	*p = v
}

// SetBool assigns a boolean field. Panics if f is not a boolean field.
func (a *AnswerSet) SetBool(f Field, v bool) {
	p := a.boolPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a boolean field", string(f)))
	}
	*p = v
}

// Toggle adds v to a set field when absent and removes it when present.
// Applying it twice returns the membership to its prior state. Panics if
// f is not a set field.
func (a *AnswerSet) Toggle(f Field, v string) {
	p := a.setPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a set field", string(f)))
	}
	for i, existing := range *p {
		if existing == v {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
	*p = append(*p, v)
}

// Text returns a text field's value. Panics if f is not a text field.
func (a *AnswerSet) Text(f Field) string {
	p := a.textPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a text field", string(f)))
	}
	return *p
}

// Bool returns a boolean field's value. Panics if f is not a boolean field.
func (a *AnswerSet) Bool(f Field) bool {
	p := a.boolPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a boolean field", string(f)))
	}
	return *p
}

// Members returns a set field's current members in insertion order.
// Panics if f is not a set field.
func (a *AnswerSet) Members(f Field) []string {
	p := a.setPtr(f)
	if p == nil {
		panic(fmt.Sprintf("model: %q is not a set field", string(f)))
	}
	return *p
}

// Has reports whether v is a member of the set field f.
func (a *AnswerSet) Has(f Field, v string) bool {
	for _, m := range a.Members(f) {
		if m == v {
			return true
		}
	}
	return false
}

// Empty reports whether the field holds its default value. For the
// validator this is the definition of "missing": empty string, false, or
// an empty set.
func (a *AnswerSet) Empty(f Field) bool {
	switch f.Kind() {
	case KindSet:
		return len(a.Members(f)) == 0
	case KindBool:
		return !a.Bool(f)
	default:
		return a.Text(f) == ""
	}
}

// Reset returns every field to its default. Partial resets do not exist.
func (a *AnswerSet) Reset() {
	*a = AnswerSet{}
}
