package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"stableScope/internal/metrics"
	"stableScope/internal/model"
	"stableScope/internal/saddle"
	"stableScope/internal/stableswap"
)

// SnapshotSource yields pool snapshots; block zero means the latest.
type SnapshotSource interface {
	Snapshot(ctx context.Context, block uint64) (model.PoolSnapshot, error)
}

// Request describes one simulated swap.
type Request struct {
	From     int
	To       int
	AmountIn *uint256.Int
	Block    uint64
}

// Result is a computed quote together with the state it was computed on.
type Result struct {
	Request  Request
	Snapshot model.PoolSnapshot
	// Now is the reference time used for the amplification ramp.
	Now          uint64
	PreciseA     *uint256.Int
	A            *uint256.Int
	VirtualPrice *uint256.Int
	stableswap.Quote
}

// Service quotes swaps against snapshots from a source.
type Service struct {
	source  SnapshotSource
	clock   Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService builds a Service. With a nil clock the snapshot's block
// timestamp is the reference time.
func NewService(source SnapshotSource, clock Clock, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		clock:   clock,
		logger:  logger,
		metrics: m,
	}
}

// Quote fetches a snapshot at req.Block and quotes req against it.
func (s *Service) Quote(ctx context.Context, req Request) (Result, error) {
	if s.source == nil {
		return Result{}, fmt.Errorf("snapshot source is nil")
	}
	start := time.Now()
	snap, err := s.source.Snapshot(ctx, req.Block)
	s.metrics.ObserveSnapshot(time.Since(start))
	if err != nil {
		s.metrics.ObserveQuote(err, "snapshot", time.Since(start))
		return Result{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	return s.quote(ctx, snap, req, start)
}

// QuoteSnapshot quotes req against an already fetched snapshot.
func (s *Service) QuoteSnapshot(ctx context.Context, snap model.PoolSnapshot, req Request) (Result, error) {
	return s.quote(ctx, snap, req, time.Now())
}

func (s *Service) quote(ctx context.Context, snap model.PoolSnapshot, req Request, start time.Time) (res Result, err error) {
	defer func() {
		s.metrics.ObserveQuote(err, ErrorReason(err), time.Since(start))
	}()

	state, err := saddle.Decode(snap)
	if err != nil {
		return Result{}, fmt.Errorf("decode snapshot: %w", err)
	}

	now := snap.Timestamp
	if s.clock != nil {
		if now, err = s.clock.Now(ctx); err != nil {
			return Result{}, fmt.Errorf("read clock: %w", err)
		}
	}

	q, err := stableswap.CalculateSwapQuote(state, req.From, req.To, req.AmountIn, now)
	if err != nil {
		return Result{}, err
	}
	preciseA, err := stableswap.CurrentA(state, now)
	if err != nil {
		return Result{}, err
	}

	res = Result{
		Request:  req,
		Snapshot: snap,
		Now:      now,
		PreciseA: preciseA,
		A:        new(uint256.Int).Div(preciseA, uint256.NewInt(stableswap.APrecision)),
		Quote:    q,
	}
	if supply, perr := saddle.ParseAmount(snap.LPSupply); perr == nil {
		if vp, verr := stableswap.VirtualPrice(state, now, supply); verr == nil {
			res.VirtualPrice = vp
		} else {
			s.logger.Debug("virtual price failed", zap.Error(verr))
		}
	}

	s.logger.Debug("quote",
		zap.String("pool", snap.Pool),
		zap.Uint64("block", snap.BlockNumber),
		zap.Uint64("now", now),
		zap.Int("from", req.From),
		zap.Int("to", req.To),
		zap.String("amount_in", req.AmountIn.Dec()),
		zap.String("amount_out", q.AmountOut.Dec()),
	)
	return res, nil
}

// Record flattens a result for storage.
func (r Result) Record(quotedAt time.Time) model.QuoteRecord {
	record := model.QuoteRecord{
		ChainID:     r.Snapshot.ChainID,
		Pool:        r.Snapshot.Pool,
		BlockNumber: r.Snapshot.BlockNumber,
		Timestamp:   r.Snapshot.Timestamp,
		QuoteTime:   r.Now,
		From:        r.Request.From,
		To:          r.Request.To,
		AmountIn:    r.Request.AmountIn.Dec(),
		AmountOut:   r.AmountOut.Dec(),
		SwapFee:     r.SwapFee.Dec(),
		AdminFee:    r.AdminFee.Dec(),
		A:           r.PreciseA.Dec(),
		QuotedAt:    quotedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.Request.From < len(r.Snapshot.Tokens) {
		record.TokenIn = r.Snapshot.Tokens[r.Request.From].Address
	}
	if r.Request.To < len(r.Snapshot.Tokens) {
		record.TokenOut = r.Snapshot.Tokens[r.Request.To].Address
	}
	if r.VirtualPrice != nil {
		record.VirtualPrice = r.VirtualPrice.Dec()
	}
	return record
}

// ErrorReason maps an error to a short metrics label.
func ErrorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, stableswap.ErrConvergenceD), errors.Is(err, stableswap.ErrConvergenceY):
		return "convergence"
	case errors.Is(err, stableswap.ErrArithmeticUnderflow),
		errors.Is(err, stableswap.ErrArithmeticOverflow),
		errors.Is(err, stableswap.ErrDivisionByZero):
		return "arithmetic"
	case errors.Is(err, stableswap.ErrTokenIndexOutOfRange), errors.Is(err, stableswap.ErrSameTokenIndex):
		return "index"
	case errors.Is(err, stableswap.ErrInvalidTokenCount),
		errors.Is(err, stableswap.ErrBalanceMultiplierMismatch),
		errors.Is(err, stableswap.ErrDuplicateToken),
		errors.Is(err, stableswap.ErrZeroAddressToken),
		errors.Is(err, stableswap.ErrDecimalsExceedMax),
		errors.Is(err, stableswap.ErrFeeExceedsMax):
		return "pool"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
