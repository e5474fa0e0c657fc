package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stableScope/internal/metrics"
	"stableScope/internal/model"
	"stableScope/internal/quote"
	"stableScope/internal/stableswap"
	"stableScope/internal/storage"
)

// RunConfig holds runtime settings for the tracker.
type RunConfig struct {
	FromBlock uint64
	// ToBlock of zero means the chain head at start.
	ToBlock uint64
	// Step is the distance between sampled blocks.
	Step uint64
	// BatchSize is the number of sampled blocks per storage write.
	BatchSize    uint64
	Requests     []quote.Request
	MaxRetries   int
	RetryBackoff time.Duration
}

// HeadReader reports the chain head.
type HeadReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// SnapshotSink optionally stores every sampled snapshot.
type SnapshotSink interface {
	UpsertPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error
}

// Runner samples a pool across a block range and stores quotes.
type Runner struct {
	cfg        RunConfig
	head       HeadReader
	source     quote.SnapshotSource
	service    *quote.Service
	storage    storage.Storage
	errors     storage.ErrorSink
	snapshots  SnapshotSink
	checkpoint Checkpointer
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// Deps groups the collaborators of a Runner. Errors, Snapshots, Checkpoint
// and Metrics are optional.
type Deps struct {
	Head       HeadReader
	Source     quote.SnapshotSource
	Service    *quote.Service
	Storage    storage.Storage
	Errors     storage.ErrorSink
	Snapshots  SnapshotSink
	Checkpoint Checkpointer
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		head:       deps.Head,
		source:     deps.Source,
		service:    deps.Service,
		storage:    deps.Storage,
		errors:     deps.Errors,
		snapshots:  deps.Snapshots,
		checkpoint: deps.Checkpoint,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Run executes the sampling loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("snapshot source is nil")
	}
	if r.service == nil {
		return fmt.Errorf("quote service is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.Step == 0 {
		return fmt.Errorf("step must be greater than zero")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(r.cfg.Requests) == 0 {
		return fmt.Errorf("at least one quote request is required")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		if r.head == nil {
			return fmt.Errorf("to block is required without a head reader")
		}
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			latest, err := r.head.LatestBlockNumber(ctx)
			if err != nil {
				r.logger.Warn("latest block fetch failed", zap.Error(err))
				return err
			}
			to = latest
			return nil
		})
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}

	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + r.cfg.Step
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sample", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.Step*r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		blocks := blockRange.Samples(r.cfg.Step)
		r.logger.Info("sample range", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To), zap.Int("blocks", len(blocks)))

		var (
			records   []model.QuoteRecord
			failures  []model.QuoteError
			snapshots []model.PoolSnapshot
		)
		for _, block := range blocks {
			snap, err := r.snapshotWithRetry(ctx, block)
			if err != nil {
				return fmt.Errorf("snapshot %d: %w", block, err)
			}
			snapshots = append(snapshots, snap)

			quotedAt := time.Now()
			for _, req := range r.cfg.Requests {
				req.Block = block
				res, err := r.service.QuoteSnapshot(ctx, snap, req)
				if err != nil {
					r.logger.Warn("quote failed",
						zap.Uint64("block", block),
						zap.Int("from", req.From),
						zap.Int("to", req.To),
						zap.Error(err),
					)
					failures = append(failures, model.QuoteError{
						ChainID:     snap.ChainID,
						Pool:        snap.Pool,
						BlockNumber: block,
						From:        req.From,
						To:          req.To,
						AmountIn:    amountString(req),
						Error:       err.Error(),
					})
					continue
				}
				records = append(records, res.Record(quotedAt))
			}
		}

		if r.snapshots != nil {
			if err := r.snapshots.UpsertPoolSnapshots(ctx, snapshots); err != nil {
				return fmt.Errorf("store snapshots: %w", err)
			}
		}
		if err := r.storage.PutQuoteBatch(ctx, records); err != nil {
			return fmt.Errorf("store quotes: %w", err)
		}
		if r.errors != nil {
			if err := r.errors.PutErrorBatch(ctx, failures); err != nil {
				return fmt.Errorf("store quote errors: %w", err)
			}
		}

		last := blocks[len(blocks)-1]
		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, last); err != nil {
				return err
			}
		}
		r.metrics.SetLastBlock(last)

		r.logger.Info("batch complete",
			zap.Int("quotes", len(records)),
			zap.Int("errors", len(failures)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) snapshotWithRetry(ctx context.Context, block uint64) (model.PoolSnapshot, error) {
	var snap model.PoolSnapshot
	start := time.Now()
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		snap, err = r.source.Snapshot(ctx, block)
		if err != nil {
			if isPoolError(err) {
				return permanent(err)
			}
			r.logger.Warn("snapshot fetch failed", zap.Error(err), zap.Uint64("block", block))
		}
		return err
	})
	r.metrics.ObserveSnapshot(time.Since(start))
	return snap, err
}

// isPoolError reports failures caused by the pool itself rather than the
// transport.
func isPoolError(err error) bool {
	return errors.Is(err, stableswap.ErrInvalidTokenCount) ||
		errors.Is(err, stableswap.ErrBalanceMultiplierMismatch) ||
		errors.Is(err, stableswap.ErrDuplicateToken) ||
		errors.Is(err, stableswap.ErrZeroAddressToken) ||
		errors.Is(err, stableswap.ErrDecimalsExceedMax)
}

func amountString(req quote.Request) string {
	if req.AmountIn == nil {
		return ""
	}
	return req.AmountIn.Dec()
}
