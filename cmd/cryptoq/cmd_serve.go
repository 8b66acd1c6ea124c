package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crypto-query-lab/internal/config"
	"crypto-query-lab/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Endpoints:
  POST /api/query  {"query": "..."}
  GET  /health
  GET  /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, func(cfg *config.Config) {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	return server.New(a.cfg.Server.Addr, a.engine, a.logger).Run(ctx)
}
