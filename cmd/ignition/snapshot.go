package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ignitionAdapters/internal/chain"
	"ignitionAdapters/internal/config"
	"ignitionAdapters/internal/dex"
	"ignitionAdapters/internal/snapshot"
	"ignitionAdapters/internal/storage"
	"ignitionAdapters/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pools, err := snapshot.ParseAddresses(cfg.Pools)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	poolReader := dex.NewPoolReader(chainClient, dex.NewPoolMetaCache(), dex.NewTokenMetaCache(), logger)

	sinks := storage.Multi{storage.NewJsonlStorage(cfg.Out)}
	var checkpoint snapshot.CheckpointStore = snapshot.NewFileCheckpointStore(cfg.Checkpoint)

	var store *postgres.Store
	if cfg.PgDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
		checkpoint = snapshot.NewPostgresCheckpointStore(store, cfg.CheckpointName)
	}

	runner, err := snapshot.NewRunner(snapshot.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Pools:        pools,
		Blueprint:    cfg.Blueprint,
		DesiredBins:  cfg.DesiredBins,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, poolReader, sinks, checkpoint, logger)
	if err != nil {
		return err
	}
	if store != nil {
		runner.SetPoolRecorder(store)
	}

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("pools", len(pools)),
		zap.String("blueprint", cfg.Blueprint),
		zap.Uint32("count", cfg.DesiredBins),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PgDSN)),
	)

	return runner.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
