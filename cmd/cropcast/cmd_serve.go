package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cropcast/internal/config"
	"cropcast/internal/gee"
	"cropcast/internal/health"
	"cropcast/internal/logging"
	"cropcast/internal/model"
	"cropcast/internal/server"
	"cropcast/internal/store"
	"cropcast/internal/variety"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction API server",
	Long: `Boots the full service: config, store, variety catalog, model registry,
satellite integration, and the HTTP API. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(cfg.DataDir, logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
		JSONFormat: cfg.Logging.JSONFormat,
	}); err != nil {
		return err
	}
	defer logging.CloseAll()

	logger.Info("starting cropcast",
		zap.String("version", cfg.Version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("model_dir", cfg.Models.Dir))

	st, err := store.NewLocalStore(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SeedVarieties(variety.SeedCatalog()); err != nil {
		return err
	}
	catalog, err := st.LoadVarieties()
	if err != nil {
		return err
	}
	selector := variety.NewSelector(catalog)
	logger.Info("variety catalog ready", zap.Int("registrations", len(catalog)))

	registry := model.NewRegistry(cfg.Models.Dir, cfg.Models.ConfidenceLevel, cfg.Models.FallbackRelBand, st)
	if err := registry.Load(); err != nil {
		return err
	}
	if registry.FallbackMode() {
		logger.Warn("one or more crops are serving baseline models (fallback mode)")
	}

	satellite := gee.NewClient(gee.Options{
		Enabled:  cfg.GEE.Enabled,
		BaseURL:  cfg.GEE.BaseURL,
		APIKey:   cfg.GEE.APIKey,
		Timeout:  cfg.GetGEETimeout(),
		CacheTTL: cfg.GetGEECacheTTL(),
		Cooldown: cfg.GetGEECooldown(),
	})

	checker := health.NewChecker(registry, satellite, st, cfg.Version)
	srv := server.New(cfg, registry, selector, satellite, checker, st)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if cfg.Models.HotReload {
		g.Go(func() error {
			if err := registry.Watch(ctx, cfg.GetReloadDebounce()); err != nil && err != context.Canceled {
				logger.Warn("model watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	err = g.Wait()
	logger.Info("cropcast stopped")
	return err
}
