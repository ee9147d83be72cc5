package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/northwind-msp/portal-api/internal/resilience"
	"github.com/northwind-msp/portal-api/internal/store"
	"github.com/northwind-msp/portal-api/pkg/accounts"
	"github.com/northwind-msp/portal-api/pkg/billing"
	"github.com/northwind-msp/portal-api/pkg/notion"
	sfpkg "github.com/northwind-msp/portal-api/pkg/salesforce"
	"github.com/northwind-msp/portal-api/pkg/ticket"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "portal.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initTicket() ticket.Client {
	retryCfg := resilience.FromRetryConfig(cfg.Ticket.MaxAttempts, 0, 0, 0, -1)
	return ticket.NewClient(cfg.Ticket.Key,
		ticket.WithBaseURL(cfg.Ticket.BaseURL),
		ticket.WithRateLimit(cfg.Ticket.RatePerSec),
		ticket.WithRetryConfig(retryCfg),
		ticket.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.FromCircuitConfig(0, 0))),
	)
}

func initAccounts() accounts.Client {
	return accounts.NewClient(cfg.Accounts.Key, accounts.WithBaseURL(cfg.Accounts.BaseURL))
}

func initBilling() billing.Client {
	return billing.NewClient(cfg.Billing.Key, billing.WithBaseURL(cfg.Billing.BaseURL))
}

func initNotion() notion.Client {
	return notion.NewClient(cfg.Notion.Token)
}

func initSalesforce() (sfpkg.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
