package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/tuskheart/internal/transport/httpapi"
	"github.com/sandevgo/tuskheart/internal/transport/stdio"
	"github.com/sandevgo/tuskheart/pkg/log"
	"github.com/sandevgo/tuskheart/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve composed context to a host chat process",
	Long: `Answers line-delimited JSON requests on stdin with one JSON line each on
stdout, and serves /v1/compose, /healthz and /metrics over HTTP.
Each transport can be turned off with EMOCTX_SIDECAR and EMOCTX_HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.SetContext(ctx)

		return runWithApp(cmd, func(ctx context.Context, a *app) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			logger := log.FromCtx(ctx)
			logger.Info().Str("policy", a.policy.Version).Msg("starting emoctx")

			services := newServeServices(a, cmd)
			if len(services) == 1 {
				logger.Warn().Msg("no transports enabled, nothing to serve")
				return nil
			}

			srv.StartServices(ctx, cancel, services)
			srv.ShutdownServices(ctx, services, srv.DefaultShutdownTimeout)

			logger.Info().Msg("emoctx has been shut down gracefully")
			return nil
		})
	},
}

func newServeServices(a *app, cmd *cobra.Command) []srv.Service {
	composer := a.composer()

	// Shut down last, after the transports have stopped writing.
	services := []srv.Service{srv.NewCleanup("sqlite-checkpoint", func() error {
		_, err := a.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
		return err
	})}

	if a.cfg.IsSidecarEnabled() {
		services = append(services, stdio.NewSidecar(composer, cmd.InOrStdin(), cmd.OutOrStdout()))
	}
	if a.cfg.IsHTTPEnabled() {
		services = append(services, httpapi.NewServer(a.cfg.GetHTTPAddr(), composer, a.db))
	}
	return services
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
