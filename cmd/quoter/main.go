package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"stableScope/internal/chain"
	"stableScope/internal/config"
	"stableScope/internal/saddle"
	"stableScope/internal/tracker"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "StableSwap pool swap calculator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a pool snapshot",
		RunE:  runQuote,
	}
	addPoolFlags(quoteCmd)
	quoteCmd.Flags().String("snapshot", "", "snapshot JSON file to quote offline instead of RPC")
	quoteCmd.Flags().Int("from", 0, "input token index")
	quoteCmd.Flags().Int("to", 1, "output token index")
	quoteCmd.Flags().String("amount", "", "input amount in base units")
	quoteCmd.Flags().String("amount-human", "", "input amount in whole tokens (e.g. 1.5)")
	quoteCmd.Flags().String("now", "", "reference time: unix seconds, RFC3339, head, or system (default snapshot block time)")
	quoteCmd.Flags().String("output", "table", "output format (table, json)")
	quoteCmd.Flags().Bool("verify", false, "compare with the pool's own calculateSwap")
	root.AddCommand(quoteCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch pool state and write it as JSON",
		RunE:  runSnapshot,
	}
	addPoolFlags(snapshotCmd)
	snapshotCmd.Flags().String("out", "./data/snapshot.json", "output snapshot path")
	snapshotCmd.Flags().Bool("print", false, "also print the snapshot as a table")
	root.AddCommand(snapshotCmd)

	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Quote a pool across a block range",
		RunE:  runTrack,
	}
	addPoolFlags(trackCmd)
	trackCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	trackCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	trackCmd.Flags().Uint64("step", 1, "blocks between samples")
	trackCmd.Flags().Uint64("batch-size", 100, "samples per storage write")
	trackCmd.Flags().StringSlice("request", nil, "quote requests as from:to:amount (repeatable)")
	trackCmd.Flags().String("out", "./data/quotes.jsonl", "output quotes JSONL path")
	trackCmd.Flags().String("errors", "./data/quote_errors.jsonl", "quote errors JSONL path")
	trackCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	trackCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	trackCmd.Flags().Bool("store-snapshots", false, "store every sampled snapshot in Postgres")
	trackCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	trackCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	trackCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	root.AddCommand(trackCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("pool", "", "swap pool address")
	cmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	cmd.Flags().StringSlice("tokens", nil, "static token list as address:decimals[:symbol] (comma-separated)")
	cmd.Flags().Int("token-count", 0, "number of pooled tokens, 0 reads getToken until it reverts")
	cmd.Flags().Float64("rpc-rps", 0, "max RPC requests per second, 0 disables throttling")
	cmd.Flags().Int("rpc-burst", 1, "RPC rate limiter burst")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-file", "", "write logs to a rotating file instead of stderr")
}

func newLogger(level, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		return cfg.Build()
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), writer, cfg.Level)
	return zap.New(core, zap.AddCaller()), nil
}

// dialPool connects to the RPC endpoint and builds a provider for the pool.
func dialPool(ctx context.Context, common config.Common, logger *zap.Logger) (*chain.Client, *saddle.Provider, error) {
	if common.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	if common.Pool == "" {
		return nil, nil, fmt.Errorf("pool address is required")
	}
	poolAddr, err := tracker.ParseAddress(common.Pool)
	if err != nil {
		return nil, nil, err
	}

	var opts []chain.Option
	if common.RPCRPS > 0 {
		opts = append(opts, chain.WithRateLimit(common.RPCRPS, common.RPCBurst))
	}
	chainClient, err := chain.NewClient(ctx, common.RPCURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	var registry saddle.TokenRegistry
	if len(common.Tokens) > 0 {
		static, err := saddle.ParseStaticTokens(common.Tokens)
		if err != nil {
			chainClient.Close()
			return nil, nil, err
		}
		registry = static
	} else {
		registry = saddle.NewChainRegistry(chainClient, saddle.NewTokenMetaCache(), common.TokenCount, logger)
	}

	return chainClient, saddle.NewProvider(chainClient, poolAddr, registry, logger), nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
