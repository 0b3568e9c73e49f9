package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/evald"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var (
	grpcAddr string
	httpAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve evaluations over gRPC and HTTP",
	Long: `Starts the voxcraft.v1.Evaluator gRPC service and the JSON HTTP API on one
pipeline. Evaluations are serialized.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	serveCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address (empty disables HTTP)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, st, cleanup, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := evald.NewService(p, st, log)
	svc.SetMetrics(p.Metrics())

	// TODO: add TLS and authentication before exposing beyond localhost.
	grpcServer := grpc.NewServer()
	health := evald.NewGRPCServer(svc).Register(grpcServer)

	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("gRPC server listening", "addr", grpcLis.Addr().String())
		if err := grpcServer.Serve(grpcLis); err != nil {
			errCh <- err
		}
	}()

	var httpSrv *http.Server
	if httpAddr != "" {
		httpSrv = &http.Server{
			Addr:              httpAddr,
			Handler:           evald.NewHTTPServer(svc).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		go func() {
			log.Info("HTTP server listening", "addr", httpAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case serveErr = <-errCh:
		log.Error("server error", "error", serveErr)
	}

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown error", "error", err)
		}
	}
	grpcServer.GracefulStop()
	return serveErr
}
