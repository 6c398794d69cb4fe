package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adsdash/internal/delivery"
	"adsdash/internal/infrastructure"
	"adsdash/internal/usecase"
	"adsdash/pkg/config"
	"adsdash/pkg/logger"
	"adsdash/pkg/metrics"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runServe(cmd *cobra.Command, loadConfig func() (*config.Config, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level)
	m := metrics.New()

	fallback, err := infrastructure.NewFallbackSource(cfg.Dashboard.FallbackFile, log)
	if err != nil {
		return err
	}

	if !cfg.Meta.Configured() {
		log.Warn("META_ACCESS_TOKEN or META_AD_ACCOUNT_ID not set, every request will use the fallback payload")
	}
	metaClient := infrastructure.NewMetaClient(cfg.Meta, log, m)

	dashboard := usecase.NewDashboardService(metaClient, fallback, newEngine(cfg.Dashboard), log, m)
	handlers := delivery.NewHTTPHandlers(dashboard, log, version)
	router := delivery.NewHTTPRouter(handlers, log, m, cfg.Server)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(map[string]any{
			"port":    cfg.Server.Port,
			"version": version,
			"origins": cfg.Server.FrontendOrigins,
		}).Info("Starting server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("Server stopped")
		return nil
	})

	return g.Wait()
}
