package model

import "time"

// Roles recognized by the portal. Anything that is not an admin is
// treated as a regular client.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Session is the authenticated identity vouched for by the hosted auth
// collaborator. Sign-in, sign-up and profile updates happen against that
// platform directly; the portal only verifies tokens.
type Session struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// DisplayName returns the session's full name, falling back to the email
// address when no name is on file.
func (s Session) DisplayName() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Email
}

// ImpersonationTarget is the client account an admin is viewing the
// portal as. At most one target is active per admin; starting a new one
// overwrites the previous.
type ImpersonationTarget struct {
	ID           string `json:"id"`
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	ContactName  string `json:"contact_name"`
}

// EffectiveIdentity is the identity every portal data fetch queries for.
// When Impersonating is false, DisplayEmail equals SourceEmail. When
// true, DisplayEmail is the impersonated client's contact email and all
// lookups use it in place of the admin's own.
type EffectiveIdentity struct {
	SourceUserID  string `json:"source_user_id"`
	SourceEmail   string `json:"source_email"`
	Impersonating bool   `json:"impersonating"`
	DisplayEmail  string `json:"display_email"`
	DisplayName   string `json:"display_name"`
}

// ClientAccount is a managed client as known to the portal: who to bill,
// who to contact, and which company the account belongs to.
type ClientAccount struct {
	ID                string    `json:"id"`
	CompanyName       string    `json:"company_name"`
	ContactEmail      string    `json:"contact_email"`
	ContactName       string    `json:"contact_name"`
	BillingCustomerID string    `json:"billing_customer_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
