package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hydpy-dev/hydronet"
	"github.com/hydpy-dev/hydronet/internal/server"
	"github.com/hydpy-dev/hydronet/pkg/observability"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a project over HTTP",
	Long: `serve assembles the project and exposes it on an HTTP control
surface: GET /healthz and /status for probes, POST /run to advance macro
steps, and GET /metrics for the Prometheus collectors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)

		sim, err := hydronet.Open(flagProject,
			hydronet.WithLogger(logger),
			hydronet.WithRecorder(metrics),
		)
		if err != nil {
			return err
		}

		srv := server.New(sim, server.WithLogger(logger), server.WithGatherer(reg))
		httpSrv := &http.Server{
			Addr:              flagAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", flagAddr, "project", flagProject)
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
