package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/northwind-msp/portal-api/internal/catalog"
	"github.com/northwind-msp/portal-api/internal/identity"
	"github.com/northwind-msp/portal-api/internal/portal"
	"github.com/northwind-msp/portal-api/internal/submit"
	"github.com/northwind-msp/portal-api/internal/wizard"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		resolver := identity.NewResolver(st)
		a := newAPI(
			wizard.NewController(st),
			submit.NewPipeline(st, initTicket()),
			portal.NewService(st, resolver, initNotion(), cfg.Notion.DocumentDB, initBilling()),
			resolver,
			st,
			initAccounts(),
			cat,
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           a.routes(cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
