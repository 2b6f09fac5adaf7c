package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortlinks/internal/analytics"
	"shortlinks/internal/codegen"
	"shortlinks/internal/config"
	"shortlinks/internal/geo"
	"shortlinks/internal/http/server"
	"shortlinks/internal/logger"
	"shortlinks/internal/metrics"
	"shortlinks/internal/publicurl"
	"shortlinks/internal/service"
	"shortlinks/internal/storage/filestore"
	"shortlinks/internal/storage/sqlite"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	m := metrics.New()
	links := service.NewLinkStore(storage, codegen.NewGenerator(), *log, service.WithMetrics(m))

	var locator analytics.Locator
	if cfg.GeoLookupURL != "" {
		locator = geo.NewIPAPI(cfg.GeoLookupURL, cfg.GeoTimeout)
	}
	enricher := analytics.NewEnricher(locator, cfg.GeoTimeout, *log, m)

	publicURL := publicurl.NewResolver(cfg.PublicURL, cfg.TunnelAPIURL, cfg.Port(), *log).Resolve(ctx)

	srv, err := server.NewServer(log, cfg, publicURL, links, enricher, m)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info().
		Str("local", fmt.Sprintf("http://localhost:%s", cfg.Port())).
		Str("network", fmt.Sprintf("http://%s:%s", publicurl.LocalIP(), cfg.Port())).
		Str("public", publicURL).
		Str("storage", cfg.StorageBackend).
		Msg("shortener ready")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func openStorage(cfg *config.Config, log *zerolog.Logger) (service.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		log.Info().Str("dsn", cfg.DatabaseDSN).Msg("using sqlite storage")
		store, err := sqlite.New(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	default:
		log.Info().Str("path", cfg.FileStoragePath).Msg("using file storage")
		store, err := filestore.New(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return store, nil
	}
}
