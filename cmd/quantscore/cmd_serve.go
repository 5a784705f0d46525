package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/quantscore/internal/metrics"
	"github.com/danielpatrickdp/quantscore/internal/rpc"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Scoring gRPC API",
		Long: `Starts the quantscore.v1.Scoring gRPC service. With --metrics-addr (or
metrics_addr in the config) Prometheus metrics are served on /metrics.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "gRPC listen address (overrides config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (overrides config)")
	return cmd
}

// serve runs the gRPC server, and the metrics endpoint when metricsAddr is set,
// until ctx is canceled.
func (a *app) serve(ctx context.Context, addr, metricsAddr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := grpc.NewServer(rpc.ServerOptions(a.cfg.MaxMessageBytes)...)
	rpc.RegisterScoringServer(srv, rpc.NewServer(a.harness(0), m, a.logger))

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("scoring service listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	var httpSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		httpSrv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.logger.Info("metrics listening", "addr", metricsAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case runErr = <-errCh:
	}

	srv.GracefulStop()
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics shutdown", "error", err)
		}
	}
	return runErr
}
