package model

import "fmt"

// Field identifies one answer field collected by the intake wizard.
// The set of fields is closed: handlers parse client-supplied names via
// ParseField, and everything past that boundary works with typed values.
type Field string

const (
	// Step 0: personal info.
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldContactTime Field = "contact_time"

	// Step 1: business profile.
	FieldBusinessName    Field = "business_name"
	FieldIndustry        Field = "industry"
	FieldDescription     Field = "description"
	FieldOfferings       Field = "offerings"
	FieldAudience        Field = "audience"
	FieldDomainName      Field = "domain_name"
	FieldHostingProvider Field = "hosting_provider"

	// Step 2: design preferences and site contents.
	FieldColorTags  Field = "color_tags"
	FieldColorNotes Field = "color_notes"
	FieldLogoStatus Field = "logo_status"
	FieldPages      Field = "pages"
	FieldFeatures   Field = "features"

	// Step 3: goals and referral.
	FieldCurrentWebsite Field = "current_website"
	FieldSocialProfiles Field = "social_profiles"
	FieldGoals          Field = "goals"
	FieldChallenge      Field = "challenge"
	FieldReferralSource Field = "referral_source"

	// Step 4: additional info.
	FieldNotes           Field = "notes"
	FieldEmployeeCount   Field = "employee_count"
	FieldYearsInBusiness Field = "years_in_business"

	// Step 5: optional services.
	FieldOptionalServices Field = "optional_services"

	// Step 6: review and consent.
	FieldConsentContact   Field = "consent_contact"
	FieldConsentTerms     Field = "consent_terms"
	FieldPreferredContact Field = "preferred_contact"
)

// FieldKind classifies the value type a Field accepts.
type FieldKind int

const (
	KindText FieldKind = iota
	KindSet
	KindBool
)

// AllFields lists every declared wizard field in display order.
var AllFields = []Field{
	FieldFullName, FieldEmail, FieldPhone, FieldContactTime,
	FieldBusinessName, FieldIndustry, FieldDescription, FieldOfferings, FieldAudience,
	FieldDomainName, FieldHostingProvider,
	FieldColorTags, FieldColorNotes, FieldLogoStatus, FieldPages, FieldFeatures,
	FieldCurrentWebsite, FieldSocialProfiles, FieldGoals, FieldChallenge, FieldReferralSource,
	FieldNotes, FieldEmployeeCount, FieldYearsInBusiness,
	FieldOptionalServices,
	FieldConsentContact, FieldConsentTerms, FieldPreferredContact,
}

var fieldIndex = func() map[Field]struct{} {
	m := make(map[Field]struct{}, len(AllFields))
	for _, f := range AllFields {
		m[f] = struct{}{}
	}
	return m
}()

// ParseField maps a client-supplied field name to a declared Field.
// Unknown names return false; they are a caller error, not a panic, at
// the HTTP boundary.
func ParseField(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldIndex[f]
	return f, ok
}

// Kind returns the value type of f. Calling Kind on an undeclared field
// is a programming error and panics.
func (f Field) Kind() FieldKind {
	switch f {
	case FieldColorTags, FieldPages, FieldFeatures, FieldGoals, FieldOptionalServices:
		return KindSet
	case FieldConsentContact, FieldConsentTerms:
		return KindBool
	}
	if _, ok := fieldIndex[f]; !ok {
		panic(fmt.Sprintf("model: unknown field %q", string(f)))
	}
	return KindText
}

// Label returns a human-readable name for f, used in validation messages.
func (f Field) Label() string {
	switch f {
	case FieldFullName:
		return "full name"
	case FieldEmail:
		return "email address"
	case FieldPhone:
		return "phone number"
	case FieldContactTime:
		return "preferred contact time"
	case FieldBusinessName:
		return "business name"
	case FieldIndustry:
		return "industry"
	case FieldDescription:
		return "business description"
	case FieldOfferings:
		return "products or services offered"
	case FieldAudience:
		return "target audience"
	case FieldReferralSource:
		return "how you heard about us"
	case FieldConsentContact:
		return "consent to be contacted"
	case FieldConsentTerms:
		return "agreement to the terms of service"
	case FieldPreferredContact:
		return "preferred contact method"
	default:
		return string(f)
	}
}
