package model

import "time"

// ServiceStatus represents the lifecycle state of a subscribed service.
type ServiceStatus string

const (
	ServiceStatusActive    ServiceStatus = "active"
	ServiceStatusPaused    ServiceStatus = "paused"
	ServiceStatusCancelled ServiceStatus = "cancelled"
)

// ServiceRecord is one service a client subscribes to (hosting,
// maintenance plan, SEO retainer, ...), shown on the portal services tab.
type ServiceRecord struct {
	ID          string        `json:"id"`
	ClientEmail string        `json:"client_email"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ServiceStatus `json:"status"`
	RenewsAt    *time.Time    `json:"renews_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SupportDocument is a client-facing document (guide, invoice copy,
// onboarding doc) surfaced on the portal support tab.
type SupportDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillingPortal is the outcome of a billing-tab lookup. Having no billing
// information on file is a normal condition, not an error.
type BillingPortal struct {
	OnFile bool   `json:"on_file"`
	URL    string `json:"url,omitempty"`
}
