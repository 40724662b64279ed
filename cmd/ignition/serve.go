package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ignitionAdapters/internal/adapter"
	"ignitionAdapters/internal/api"
	"ignitionAdapters/internal/chain"
	"ignitionAdapters/internal/config"
	"ignitionAdapters/internal/dex"
	"ignitionAdapters/internal/storage"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := adapter.NewRegistry()

	if cfg.States != "" {
		states, err := storage.OpenBinPoolStateFile(cfg.States)
		if err != nil {
			return err
		}
		registry.Register(adapter.BlueprintCaviarNine, adapter.NewCaviarNine(states, logger))
		logger.Info("caviarnine pools loaded", zap.String("states", cfg.States), zap.Int("pools", len(states.States())))

		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)
		defer signal.Stop(reload)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-reload:
					if err := states.Reload(); err != nil {
						logger.Warn("reload pool states failed", zap.Error(err))
						continue
					}
					logger.Info("pool states reloaded", zap.Int("pools", len(states.States())))
				}
			}
		}()
	}

	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()

		poolReader := dex.NewPoolReader(chainClient, dex.NewPoolMetaCache(), dex.NewTokenMetaCache(), logger)
		registry.Register(adapter.BlueprintOciswap, adapter.NewOciswap(poolReader, logger))
	}

	handler := api.NewHandler(registry, api.Options{
		Timeout:     cfg.RequestTimeout,
		MaxBinCount: cfg.MaxBinCount,
	}, logger)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("listen", cfg.Listen),
			zap.Strings("blueprints", registry.Blueprints()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
