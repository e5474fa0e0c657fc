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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stableScope/internal/config"
	"stableScope/internal/metrics"
	"stableScope/internal/model"
	"stableScope/internal/quote"
	"stableScope/internal/storage"
	"stableScope/internal/storage/postgres"
	"stableScope/internal/tracker"
)

func runTrack(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTrack(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	requests, err := tracker.ParseRequests(cfg.Requests)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("at least one --request is required")
	}
	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("output path or pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, provider, err := dialPool(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if m, err = metrics.New(reg); err != nil {
			return err
		}
		shutdown := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	files := storage.NewJsonlStorage(cfg.Out, cfg.Errors)
	deps := tracker.Deps{
		Head:    chainClient,
		Source:  provider,
		Service: quote.NewService(provider, nil, logger, m),
		Storage: files,
		Errors:  files,
		Metrics: m,
		Logger:  logger,
	}
	if cfg.CheckpointEnabled {
		deps.Checkpoint = tracker.NewCheckpointStore(cfg.Checkpoint, true)
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

		deps.Storage = store
		if cfg.StoreSnapshots {
			deps.Snapshots = store
		}
		if cfg.CheckpointEnabled {
			deps.Checkpoint = tracker.StateCheckpoint{Store: store, Name: "track:" + provider.Pool().Hex()}
		}

		// register the pool once so quotes and snapshots have a parent row
		snap, err := provider.Snapshot(ctx, cfg.FromBlock)
		if err != nil {
			return fmt.Errorf("fetch pool: %w", err)
		}
		if err := store.UpsertPools(ctx, []model.Pool{snap.PoolRecord()}); err != nil {
			return err
		}
	}

	runner := tracker.NewRunner(tracker.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Step:         cfg.Step,
		BatchSize:    cfg.BatchSize,
		Requests:     requests,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, deps)

	logger.Info("track start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", cfg.Pool),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("step", cfg.Step),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("requests", len(requests)),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	return runner.Run(ctx)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
