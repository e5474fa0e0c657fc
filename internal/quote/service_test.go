package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stableScope/internal/chain/chaintest"
	"stableScope/internal/metrics"
	"stableScope/internal/model"
	"stableScope/internal/saddle"
	"stableScope/internal/saddle/saddletest"
	"stableScope/internal/stableswap"
)

type staticSource struct {
	snap model.PoolSnapshot
	err  error
}

func (s staticSource) Snapshot(context.Context, uint64) (model.PoolSnapshot, error) {
	return s.snap, s.err
}

func regressionSnapshot(ts uint64) model.PoolSnapshot {
	return model.PoolSnapshot{
		ChainID:     1,
		Pool:        "0x0000000000000000000000000000000000000ABC",
		BlockNumber: 14000000,
		Timestamp:   ts,
		PoolMeta: model.PoolMeta{
			InitialA:     "50000",
			FutureA:      "100000",
			InitialATime: 1641351112,
			FutureATime:  1642668591,
			SwapFee:      "1000000",
			AdminFee:     "6000000000",
		},
		LPSupply: "4000000000000000000",
		Tokens: []model.TokenMeta{
			{Address: "0x00000000000000000000000000000000000000A1", Decimals: 18},
			{Address: "0x00000000000000000000000000000000000000A2", Decimals: 18},
			{Address: "0x00000000000000000000000000000000000000A3", Decimals: 18},
			{Address: "0x00000000000000000000000000000000000000A4", Decimals: 18},
		},
		Balances:             []string{"1000000000000000000", "1000000000000000000", "1000000000000000000", "1000000000000000000"},
		PrecisionMultipliers: []string{"1", "1", "1", "1"},
	}
}

func TestServiceQuoteUsesSnapshotTime(t *testing.T) {
	svc := NewService(staticSource{snap: regressionSnapshot(1642668591)}, nil, nil, nil)

	res, err := svc.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.MustFromDecimal("100000000000000000")})
	require.NoError(t, err)
	assert.Equal(t, uint64(1642668591), res.Now)
	assert.Equal(t, "99979911322743161", res.AmountOut.Dec())
	assert.Equal(t, "9998991031377", res.SwapFee.Dec())
	assert.Equal(t, "5999394618826", res.AdminFee.Dec())
	assert.Equal(t, "100000", res.PreciseA.Dec())
	assert.Equal(t, "1000", res.A.Dec())
	require.NotNil(t, res.VirtualPrice)
	assert.Equal(t, "1000000000000000000", res.VirtualPrice.Dec())
}

func TestServiceQuoteClockOverride(t *testing.T) {
	svc := NewService(staticSource{snap: regressionSnapshot(1642668591)}, FixedClock(1642000000), nil, nil)

	res, err := svc.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.MustFromDecimal("100000000000000000")})
	require.NoError(t, err)
	assert.Equal(t, uint64(1642000000), res.Now)
	assert.Equal(t, "74626", res.PreciseA.Dec())
	assert.Equal(t, "99976486166768827", res.AmountOut.Dec())
}

func TestServiceQuoteErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	failing := NewService(staticSource{err: errors.New("rpc down")}, nil, nil, m)
	_, err = failing.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.NewInt(1)})
	require.Error(t, err)

	svc := NewService(staticSource{snap: regressionSnapshot(1642668591)}, nil, nil, m)
	_, err = svc.Quote(context.Background(), Request{From: 2, To: 2, AmountIn: uint256.NewInt(1)})
	require.ErrorIs(t, err, stableswap.ErrSameTokenIndex)

	early := NewService(staticSource{snap: regressionSnapshot(1642668591)}, FixedClock(1), nil, m)
	_, err = early.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.NewInt(1000)})
	require.ErrorIs(t, err, stableswap.ErrArithmeticUnderflow)

	badClock := NewService(staticSource{snap: regressionSnapshot(1642668591)}, ClockFunc(func(context.Context) (uint64, error) {
		return 0, errors.New("no clock")
	}), nil, m)
	_, err = badClock.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.NewInt(1000)})
	require.Error(t, err)
}

func TestResultRecord(t *testing.T) {
	svc := NewService(staticSource{snap: regressionSnapshot(1642668591)}, nil, nil, nil)
	res, err := svc.Quote(context.Background(), Request{From: 0, To: 3, AmountIn: uint256.MustFromDecimal("100000000000000000")})
	require.NoError(t, err)

	quotedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	record := res.Record(quotedAt)
	assert.Equal(t, uint64(1), record.ChainID)
	assert.Equal(t, uint64(14000000), record.BlockNumber)
	assert.Equal(t, "0x00000000000000000000000000000000000000A1", record.TokenIn)
	assert.Equal(t, "0x00000000000000000000000000000000000000A4", record.TokenOut)
	assert.Equal(t, "100000000000000000", record.AmountIn)
	assert.Equal(t, "99979911322743161", record.AmountOut)
	assert.Equal(t, "100000", record.A)
	assert.Equal(t, "1000000000000000000", record.VirtualPrice)
	assert.Equal(t, "2024-01-02T03:04:05Z", record.QuotedAt)
}

func TestErrorReason(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: stableswap.ErrConvergenceY, want: "convergence"},
		{err: stableswap.ErrDivisionByZero, want: "arithmetic"},
		{err: stableswap.ErrTokenIndexOutOfRange, want: "index"},
		{err: stableswap.ErrDuplicateToken, want: "pool"},
		{err: context.Canceled, want: "canceled"},
		{err: errors.New("x"), want: "other"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ErrorReason(tc.err), "error %v", tc.err)
	}
}

func TestServiceWithChainProvider(t *testing.T) {
	pool := saddletest.Regression()
	backend := &chaintest.Backend{
		ChainID:   1,
		Head:      500,
		BlockTime: func(n uint64) uint64 { return pool.InitialATime + n },
		Handler:   pool.Handler(),
	}
	client := chaintest.Dial(t, backend)
	provider := saddle.NewProvider(client, pool.Address, nil, nil)

	// reference time comes from the chain head, not the sampled block
	svc := NewService(provider, LatestBlockClock(client), nil, nil)
	res, err := svc.Quote(context.Background(), Request{From: 0, To: 1, AmountIn: uint256.MustFromDecimal("100000000000000000"), Block: 100})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.Snapshot.BlockNumber)
	assert.Equal(t, pool.InitialATime+100, res.Snapshot.Timestamp)
	assert.Equal(t, pool.InitialATime+500, res.Now)
	assert.Equal(t, "50018", res.PreciseA.Dec())
}

func TestFixedAndSystemClock(t *testing.T) {
	now, err := FixedClock(7).Now(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), now)

	sys, err := SystemClock{}.Now(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, float64(time.Now().Unix()), float64(sys), 5)
}
