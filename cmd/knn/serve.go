package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/go-sod/knn/internal/catalog"
	"github.com/go-sod/knn/internal/collect"
	knnsrv "github.com/go-sod/knn/internal/config"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/predict"
	"github.com/go-sod/knn/internal/server"
	"github.com/go-sod/knn/internal/setup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the http service storing reference sets and answering predictions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) (err error) {
	logger := logging.FromContext(ctx)
	config := knnsrv.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if cerr := env.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	manager, err := env.ProvideDispatcher()()
	if err != nil {
		return fmt.Errorf("dispatcher provider function error: %w", err)
	}

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("sever.New: %w", err)
	}

	exporter, err := metrics.NewExporter(ctx, config.MetricsNamespace)
	if err != nil {
		return fmt.Errorf("metrics.NewExporter: %w", err)
	}

	collectHandler, err := collect.NewHandler(&config.Collect, manager)
	if err != nil {
		return fmt.Errorf("collect.NewHandler: %w", err)
	}
	predictHandler, err := predict.NewHandler(&config.Predict, manager)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/collect", collectHandler)
	mux.Handle("/predict", predictHandler)
	mux.Handle("/datasets", catalog.NewHandler(manager))
	mux.Handle("/health", server.HandleHealth(ctx))
	mux.Handle("/metrics", exporter)

	logger.Infof("listening on %s", srv.Addr())
	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		return fmt.Errorf("srv.ServeHTTPHandler: %w", err)
	}
	return nil
}
