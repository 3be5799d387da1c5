package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/hero-quest/internal/api"
	"github.com/terra-clan/hero-quest/internal/cleanup"
	"github.com/terra-clan/hero-quest/internal/config"
	"github.com/terra-clan/hero-quest/internal/game"
	"github.com/terra-clan/hero-quest/internal/metrics"
	"github.com/terra-clan/hero-quest/internal/services"
	"github.com/terra-clan/hero-quest/internal/storage"
	"github.com/terra-clan/hero-quest/internal/story"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log); err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	slog.Info("starting hero-quest",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Backend,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	catalog, err := loadContent(cfg.Content.Dir)
	if err != nil {
		return err
	}

	var (
		gatherer prometheus.Gatherer
		m        *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.MustNewMetrics(reg)
		gatherer = reg
	}

	if cfg.Storage.Backend == config.BackendPostgres {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if _, err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	store, err := storage.Open(initCtx, cfg, storage.WithCacheObserver(m.ObserveCacheLookup))
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := newRegistry(initCtx, cfg, store)
	if err != nil {
		return err
	}
	defer registry.CloseAll()

	manager, err := game.NewManager(catalog, store, game.Options{
		AdvanceMode:    story.AdvanceMode(cfg.Story.AdvanceMode),
		RevealInterval: cfg.Story.RevealInterval,
		Metrics:        m,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(cfg.Server, manager, registry, m, gatherer)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	cleaner := cleanup.NewCleaner(manager, cfg.Cleanup.Interval, cfg.Story.DialogIdle)
	g.Go(func() error {
		return cleaner.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("hero-quest stopped")
	return nil
}

// newRegistry registers health checks for the store and its backing service
func newRegistry(ctx context.Context, cfg *config.Config, store storage.Store) (*services.Registry, error) {
	registry := services.NewRegistry()
	registry.Register("store", services.NewPingProvider(cfg.Storage.Backend, store))

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		provider, err := services.NewPostgresProvider(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres provider: %w", err)
		}
		registry.Register("postgres", provider)
	case config.BackendRedis:
		provider, err := services.NewRedisProvider(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis provider: %w", err)
		}
		registry.Register("redis", provider)
	}

	return registry, nil
}
