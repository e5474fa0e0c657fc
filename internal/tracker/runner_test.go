package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stableScope/internal/chain/chaintest"
	"stableScope/internal/model"
	"stableScope/internal/quote"
	"stableScope/internal/saddle"
	"stableScope/internal/saddle/saddletest"
	"stableScope/internal/stableswap"
)

type memStorage struct {
	quotes    []model.QuoteRecord
	errs      []model.QuoteError
	snapshots []model.PoolSnapshot
}

func (m *memStorage) PutQuoteBatch(_ context.Context, quotes []model.QuoteRecord) error {
	m.quotes = append(m.quotes, quotes...)
	return nil
}

func (m *memStorage) PutErrorBatch(_ context.Context, errs []model.QuoteError) error {
	m.errs = append(m.errs, errs...)
	return nil
}

func (m *memStorage) UpsertPoolSnapshots(_ context.Context, snaps []model.PoolSnapshot) error {
	m.snapshots = append(m.snapshots, snaps...)
	return nil
}

type flakySource struct {
	inner    quote.SnapshotSource
	failures int
	calls    int
	err      error
}

func (f *flakySource) Snapshot(ctx context.Context, block uint64) (model.PoolSnapshot, error) {
	f.calls++
	if f.calls <= f.failures {
		return model.PoolSnapshot{}, f.err
	}
	return f.inner.Snapshot(ctx, block)
}

func newTestProvider(t *testing.T) (*saddle.Provider, *chaintest.Backend) {
	t.Helper()
	pool := saddletest.Regression()
	backend := &chaintest.Backend{
		ChainID:   1,
		Head:      30,
		BlockTime: func(n uint64) uint64 { return pool.FutureATime + n },
		Handler:   pool.Handler(),
	}
	client := chaintest.Dial(t, backend)
	return saddle.NewProvider(client, pool.Address, nil, nil), backend
}

func testRequests(t *testing.T) []quote.Request {
	t.Helper()
	reqs, err := ParseRequests([]string{"0:1:100000000000000000", "1:1:5"})
	require.NoError(t, err)
	return reqs
}

func TestRunnerSamplesAndCheckpoints(t *testing.T) {
	provider, _ := newTestProvider(t)
	store := &memStorage{}
	checkpoint := NewCheckpointStore(filepath.Join(t.TempDir(), "checkpoint.json"), true)

	cfg := RunConfig{
		FromBlock:    10,
		ToBlock:      20,
		Step:         5,
		BatchSize:    2,
		Requests:     testRequests(t),
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}
	deps := Deps{
		Source:     provider,
		Service:    quote.NewService(provider, nil, nil, nil),
		Storage:    store,
		Errors:     store,
		Snapshots:  store,
		Checkpoint: checkpoint,
	}

	require.NoError(t, NewRunner(cfg, deps).Run(context.Background()))

	require.Len(t, store.quotes, 3)
	for i, want := range []uint64{10, 15, 20} {
		assert.Equal(t, want, store.quotes[i].BlockNumber, "quote %d", i)
		assert.Equal(t, "99979911322743161", store.quotes[i].AmountOut, "quote %d", i)
	}
	require.Len(t, store.errs, 3)
	assert.Equal(t, "5", store.errs[0].AmountIn)
	assert.NotEmpty(t, store.errs[0].Error)
	assert.Len(t, store.snapshots, 3)

	last, ok, err := checkpoint.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(20), last)

	// resume finds nothing new
	require.NoError(t, NewRunner(cfg, deps).Run(context.Background()))
	assert.Len(t, store.quotes, 3, "resume should not re-sample")
}

func TestRunnerToLatest(t *testing.T) {
	provider, backend := newTestProvider(t)
	store := &memStorage{}
	client := chaintest.Dial(t, backend)

	cfg := RunConfig{FromBlock: 25, Step: 5, BatchSize: 10, Requests: testRequests(t)[:1]}
	deps := Deps{
		Head:    client,
		Source:  provider,
		Service: quote.NewService(provider, nil, nil, nil),
		Storage: store,
	}
	require.NoError(t, NewRunner(cfg, deps).Run(context.Background()))
	require.Len(t, store.quotes, 2)
	assert.Equal(t, uint64(25), store.quotes[0].BlockNumber)
	assert.Equal(t, uint64(30), store.quotes[1].BlockNumber)
}

func TestRunnerRetriesTransientSnapshotErrors(t *testing.T) {
	provider, _ := newTestProvider(t)
	source := &flakySource{inner: provider, failures: 2, err: errors.New("connection reset")}
	store := &memStorage{}

	cfg := RunConfig{FromBlock: 1, ToBlock: 1, Step: 1, BatchSize: 1, Requests: testRequests(t)[:1], MaxRetries: 3, RetryBackoff: time.Millisecond}
	deps := Deps{Source: source, Service: quote.NewService(source, nil, nil, nil), Storage: store}
	require.NoError(t, NewRunner(cfg, deps).Run(context.Background()))
	assert.Equal(t, 3, source.calls)
	assert.Len(t, store.quotes, 1)
}

func TestRunnerDoesNotRetryPoolErrors(t *testing.T) {
	provider, _ := newTestProvider(t)
	source := &flakySource{inner: provider, failures: 10, err: fmt.Errorf("resolve tokens: %w", stableswap.ErrDuplicateToken)}

	cfg := RunConfig{FromBlock: 1, ToBlock: 1, Step: 1, BatchSize: 1, Requests: testRequests(t)[:1], MaxRetries: 5, RetryBackoff: time.Millisecond}
	deps := Deps{Source: source, Service: quote.NewService(source, nil, nil, nil), Storage: &memStorage{}}
	err := NewRunner(cfg, deps).Run(context.Background())
	assert.ErrorIs(t, err, stableswap.ErrDuplicateToken)
	assert.Equal(t, 1, source.calls, "pool errors must not be retried")
}

func TestRunnerValidatesConfig(t *testing.T) {
	provider, _ := newTestProvider(t)
	deps := Deps{Source: provider, Service: quote.NewService(provider, nil, nil, nil), Storage: &memStorage{}}

	testCases := []RunConfig{
		{FromBlock: 1, ToBlock: 2, Step: 0, BatchSize: 1, Requests: testRequests(t)},
		{FromBlock: 1, ToBlock: 2, Step: 1, BatchSize: 0, Requests: testRequests(t)},
		{FromBlock: 1, ToBlock: 2, Step: 1, BatchSize: 1},
		{FromBlock: 1, Step: 1, BatchSize: 1, Requests: testRequests(t)},
	}
	for i, cfg := range testCases {
		assert.Error(t, NewRunner(cfg, deps).Run(context.Background()), "case %d", i)
	}
}
