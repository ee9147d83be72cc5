package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents a Salesforce Lead record.
type Lead struct {
	ID          string `json:"Id" salesforce:"Id"`
	FirstName   string `json:"FirstName" salesforce:"FirstName"`
	LastName    string `json:"LastName" salesforce:"LastName"`
	Email       string `json:"Email" salesforce:"Email"`
	Phone       string `json:"Phone" salesforce:"Phone"`
	Company     string `json:"Company" salesforce:"Company"`
	Industry    string `json:"Industry" salesforce:"Industry"`
	LeadSource  string `json:"LeadSource" salesforce:"LeadSource"`
	Description string `json:"Description" salesforce:"Description"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Email", "Phone",
	"Company", "Industry", "LeadSource", "Description",
}

// FindLeadByEmail queries Salesforce for a Lead matching the given email.
// Returns nil if no lead is found.
func FindLeadByEmail(ctx context.Context, c Client, email string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Email = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(email),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by email %s", email))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// CreateLead creates a new Lead record and returns the new Salesforce ID.
// LastName and Company are required by Salesforce; empty values are
// substituted so the insert is never rejected on shape alone.
func CreateLead(ctx context.Context, c Client, lead Lead) (string, error) {
	if lead.Email == "" {
		return "", eris.New("sf: lead email is required")
	}

	lastName := lead.LastName
	if lastName == "" {
		lastName = lead.FirstName
	}
	if lastName == "" {
		lastName = "Unknown"
	}
	company := lead.Company
	if company == "" {
		company = fmt.Sprintf("%s %s", lead.FirstName, lastName)
	}

	record := map[string]any{
		"FirstName":   lead.FirstName,
		"LastName":    lastName,
		"Email":       lead.Email,
		"Phone":       lead.Phone,
		"Company":     strings.TrimSpace(company),
		"Industry":    lead.Industry,
		"LeadSource":  lead.LeadSource,
		"Description": lead.Description,
	}

	id, err := c.InsertOne(ctx, "Lead", record)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
