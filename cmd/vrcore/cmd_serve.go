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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/rpc"
)

func newServeCmd(a *app) *cobra.Command {
	var flags struct {
		addr        string
		metricsAddr string
	}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluator over gRPC with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.cfg.ListenAddr
			if flags.addr != "" {
				addr = flags.addr
			}
			metricsAddr := a.cfg.MetricsAddr
			if flags.metricsAddr != "" {
				metricsAddr = flags.metricsAddr
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, lis, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "gRPC listen address (default from config)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "metrics listen address, empty disables (default from config)")
	return cmd
}

// #region serve
// serve runs the gRPC server on lis and the metrics endpoint until ctx is done.
func serve(ctx context.Context, a *app, lis net.Listener, metricsAddr string) error {
	metrics := rpc.NewMetrics()
	grpcServer := rpc.NewGRPCServer(rpc.NewServer(a.svc), metrics, a.logger)

	var httpServer *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		httpServer = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	if httpServer != nil {
		g.Go(func() error {
			a.logger.Info("metrics listening", zap.String("addr", metricsAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics serve: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		grpcServer.GracefulStop()
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}

// #endregion serve
