// Package main runs the back-office HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/lojinha/backoffice/internal/app"
	"github.com/lojinha/backoffice/internal/config"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/upload"
	"github.com/lojinha/backoffice/pkg/bootstrap"
	"github.com/lojinha/backoffice/pkg/config/configloader"
	"github.com/lojinha/backoffice/pkg/messaging"
	pubnats "github.com/lojinha/backoffice/pkg/nats"
	"golang.org/x/sync/errgroup"
)

const serviceName = "backoffice"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, applies the schema migrations and starts
// the HTTP and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if err := store.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.Info("Database schema is up to date")

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	uploader, err := upload.NewS3Uploader(ctx, cfg.S3, logger)
	if err != nil {
		return fmt.Errorf("failed to create S3 uploader: %w", err)
	}

	publisher, closePublisher, err := setupPublisher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer closePublisher()

	deps := app.SetupDependencies(dbPool, uploader, publisher, logger)
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupPublisher connects to NATS when a URL is configured. Without one the
// service runs with a no-op publisher.
func setupPublisher(cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if cfg.Nats.Url == "" {
		logger.Info("NATS is not configured, order events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := pubnats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pubnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("url", cfg.Nats.Url))
	return pubnats.NewNatsPublisher(js), nc.Close, nil
}
