package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stableScope/internal/config"
	"stableScope/internal/format"
	"stableScope/internal/model"
	"stableScope/internal/saddle"
	"stableScope/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, provider, err := dialPool(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	snap, err := provider.Snapshot(ctx, cfg.Block)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if err := saddle.WriteSnapshotFile(cfg.Out, snap); err != nil {
		return err
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := store.UpsertPools(ctx, []model.Pool{snap.PoolRecord()}); err != nil {
			return err
		}
		if err := store.UpsertPoolSnapshots(ctx, []model.PoolSnapshot{snap}); err != nil {
			return err
		}
	}

	if cfg.Print {
		format.RenderSnapshot(os.Stdout, snap)
	}

	logger.Info("snapshot written",
		zap.String("pool", snap.Pool),
		zap.Uint64("block", snap.BlockNumber),
		zap.Int("tokens", len(snap.Tokens)),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)
	return nil
}
