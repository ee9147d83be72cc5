package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/resilience"
	"github.com/northwind-msp/portal-api/internal/store"
	sfpkg "github.com/northwind-msp/portal-api/pkg/salesforce"
)

var (
	leadsUnsynced bool
	leadsLimit    int
	leadsOut      string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export captured leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured leads as JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(cmd.Context(), leadFilter())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, lead := range leads {
			if err := enc.Encode(lead); err != nil {
				return eris.Wrap(err, "encode lead")
			}
		}
		return nil
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export captured leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(cmd.Context(), leadFilter())
		if err != nil {
			return err
		}

		if err := writeLeadsXLSX(leads, leadsOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d leads to %s\n", len(leads), leadsOut)
		return nil
	},
}

var leadsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push unsynced leads to Salesforce",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		sf, err := initSalesforce()
		if err != nil {
			return err
		}

		leads, err := st.ListLeads(cmd.Context(), store.LeadFilter{Unsynced: true, Limit: leadsLimit})
		if err != nil {
			return err
		}

		var synced, failed int
		for _, lead := range leads {
			if err := syncLead(cmd.Context(), st, sf, lead); err != nil {
				zap.L().Error("lead sync failed",
					zap.String("lead_id", lead.ID),
					zap.Error(err),
				)
				failed++
				continue
			}
			synced++
		}

		zap.L().Info("lead sync complete", zap.Int("synced", synced), zap.Int("failed", failed))
		if failed > 0 {
			return eris.Errorf("leads sync: %d of %d leads failed", failed, len(leads))
		}
		return nil
	},
}

func leadFilter() store.LeadFilter {
	return store.LeadFilter{
		FormType: model.FormTypeWizard,
		Unsynced: leadsUnsynced,
		Limit:    leadsLimit,
	}
}

// syncLead pushes one lead to Salesforce. A lead whose email already
// exists there is linked to the existing record rather than duplicated.
func syncLead(ctx context.Context, st store.Store, sf sfpkg.Client, lead model.Lead) error {
	retryCfg := resilience.RetryConfig{
		MaxAttempts: 3,
		OnRetry:     resilience.RetryLogger("salesforce", "sync lead"),
	}

	crmID, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (string, error) {
		existing, err := sfpkg.FindLeadByEmail(ctx, sf, lead.Email)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}

		return sfpkg.CreateLead(ctx, sf, sfpkg.Lead{
			FirstName:   lead.FirstName,
			LastName:    lead.LastName,
			Email:       lead.Email,
			Phone:       lead.Phone,
			Company:     lead.Company,
			Industry:    deref(lead.Industry),
			LeadSource:  "Website",
			Description: lead.Message,
		})
	})
	if err != nil {
		return err
	}

	return st.MarkLeadSynced(ctx, lead.ID, crmID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var leadsXLSXHeader = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Company",
	"Subject", "Form Type", "Consultation", "Preferred Date", "Industry",
	"Ticket", "CRM ID", "Created",
}

func writeLeadsXLSX(leads []model.Lead, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "leads export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadsXLSXHeader {
		header.AddCell().Value = h
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		cells := []string{
			lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone,
			lead.Company, lead.Subject, lead.FormType,
			fmt.Sprintf("%t", lead.RequestConsultation),
			deref(lead.PreferredDate), deref(lead.Industry),
			lead.TicketKey, lead.CRMID,
			lead.CreatedAt.Format("2006-01-02 15:04"),
		}
		for _, c := range cells {
			row.AddCell().Value = c
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "leads export: save workbook")
	}
	return nil
}

func init() {
	leadsCmd.PersistentFlags().BoolVar(&leadsUnsynced, "unsynced", false, "only leads not yet pushed to the CRM")
	leadsCmd.PersistentFlags().IntVar(&leadsLimit, "limit", 0, "maximum leads to process (0 = store default)")
	leadsExportCmd.Flags().StringVar(&leadsOut, "out", "leads.xlsx", "output workbook path")

	leadsCmd.AddCommand(leadsListCmd, leadsExportCmd, leadsSyncCmd)
	rootCmd.AddCommand(leadsCmd)
}
