package model

import "time"

// FormTypeWizard marks leads that came through the multi-step intake wizard.
const FormTypeWizard = "website_project"

// Lead is the normalized record written to the lead store when a wizard
// submission completes. Optional fields that the wizard left empty are
// nil so they persist as NULL.
type Lead struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	Company             string     `json:"company"`
	Subject             string     `json:"subject"`
	Message             string     `json:"message"`
	FormType            string     `json:"form_type"`
	RequestConsultation bool       `json:"request_consultation"`
	SubscribeNewsletter bool       `json:"subscribe_newsletter"`
	PreferredDate       *string    `json:"preferred_date,omitempty"`
	EmployeeCount       *string    `json:"employee_count,omitempty"`
	Industry            *string    `json:"industry,omitempty"`
	TicketKey           string     `json:"ticket_key,omitempty"`
	CRMID               string     `json:"crm_id,omitempty"`
	CRMSyncedAt         *time.Time `json:"crm_synced_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
