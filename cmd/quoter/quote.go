package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stableScope/internal/chain"
	"stableScope/internal/config"
	"stableScope/internal/format"
	"stableScope/internal/model"
	"stableScope/internal/quote"
	"stableScope/internal/saddle"
	"stableScope/internal/storage/postgres"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Amount == "" && cfg.AmountHuman == "" {
		return fmt.Errorf("amount is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		source      quote.SnapshotSource
		chainClient *chain.Client
		provider    *saddle.Provider
	)
	if cfg.Snapshot != "" {
		source = saddle.FileSource{Path: cfg.Snapshot}
	} else {
		chainClient, provider, err = dialPool(ctx, cfg.Common, logger)
		if err != nil {
			return err
		}
		defer chainClient.Close()
		source = provider
	}

	clock, err := quoteClock(cfg.Now, chainClient)
	if err != nil {
		return err
	}

	snap, err := source.Snapshot(ctx, cfg.Block)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	amountIn, err := quoteAmount(cfg, snap)
	if err != nil {
		return err
	}

	logger.Info("quote start",
		zap.String("pool", snap.Pool),
		zap.Uint64("block", snap.BlockNumber),
		zap.Int("from", cfg.From),
		zap.Int("to", cfg.To),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("snapshot", cfg.Snapshot),
	)

	service := quote.NewService(source, clock, logger, nil)
	res, err := service.QuoteSnapshot(ctx, snap, quote.Request{
		From:     cfg.From,
		To:       cfg.To,
		AmountIn: amountIn,
		Block:    snap.BlockNumber,
	})
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	record := res.Record(time.Now())

	switch cfg.Output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode quote: %w", err)
		}
	default:
		format.RenderQuote(os.Stdout, res)
	}

	if cfg.PGDSN != "" {
		if err := storeQuote(ctx, cfg.PGDSN, snap, record, logger); err != nil {
			return err
		}
	}

	if cfg.Verify {
		if provider == nil {
			return fmt.Errorf("verify needs an rpc pool, not a snapshot file")
		}
		return verifyQuote(ctx, provider, res, logger)
	}

	return nil
}

// quoteClock resolves the --now setting. An empty value quotes at the
// snapshot's block time.
func quoteClock(now string, chainClient *chain.Client) (quote.Clock, error) {
	switch strings.ToLower(strings.TrimSpace(now)) {
	case "":
		return nil, nil
	case "system":
		return quote.SystemClock{}, nil
	case "head":
		if chainClient == nil {
			return nil, fmt.Errorf("now=head needs an rpc connection")
		}
		return quote.LatestBlockClock(chainClient), nil
	}
	ts, err := config.ParseTimestamp(now)
	if err != nil {
		return nil, fmt.Errorf("parse now: %w", err)
	}
	return quote.FixedClock(ts), nil
}

func quoteAmount(cfg config.QuoteConfig, snap model.PoolSnapshot) (*uint256.Int, error) {
	if cfg.Amount != "" {
		amount, err := saddle.ParseAmount(cfg.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		return amount, nil
	}
	if cfg.From < 0 || cfg.From >= len(snap.Tokens) {
		return nil, fmt.Errorf("from index %d out of range for %d tokens", cfg.From, len(snap.Tokens))
	}
	amount, err := format.ParseUnits(cfg.AmountHuman, snap.Tokens[cfg.From].Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse amount-human: %w", err)
	}
	return amount, nil
}

func storeQuote(ctx context.Context, dsn string, snap model.PoolSnapshot, record model.QuoteRecord, logger *zap.Logger) error {
	store, err := postgres.NewStore(ctx, dsn)
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
	if err := store.PutQuoteBatch(ctx, []model.QuoteRecord{record}); err != nil {
		return err
	}
	logger.Info("quote stored", zap.String("pg_dsn", redactDSN(dsn)))
	return nil
}

func verifyQuote(ctx context.Context, provider *saddle.Provider, res quote.Result, logger *zap.Logger) error {
	if res.Request.From > 255 || res.Request.To > 255 {
		return fmt.Errorf("token index does not fit uint8")
	}
	onChain, err := provider.OnChainQuote(ctx, uint8(res.Request.From), uint8(res.Request.To), res.Request.AmountIn, res.Snapshot.BlockNumber)
	if err != nil {
		return fmt.Errorf("on-chain quote: %w", err)
	}
	if !onChain.Eq(res.AmountOut) {
		logger.Warn("on-chain quote mismatch",
			zap.String("local", res.AmountOut.Dec()),
			zap.String("on_chain", onChain.Dec()),
			zap.Uint64("block", res.Snapshot.BlockNumber),
		)
		return fmt.Errorf("on-chain quote %s differs from local %s", onChain.Dec(), res.AmountOut.Dec())
	}
	logger.Info("on-chain quote matches", zap.String("amount_out", onChain.Dec()))
	return nil
}
