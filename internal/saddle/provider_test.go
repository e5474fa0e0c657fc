package saddle_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stableScope/internal/chain/chaintest"
	"stableScope/internal/saddle"
	"stableScope/internal/saddle/saddletest"
	"stableScope/internal/stableswap"
)

func newBackend(pool *saddletest.Pool) *chaintest.Backend {
	return &chaintest.Backend{
		ChainID:   1,
		Head:      14000100,
		BlockTime: func(uint64) uint64 { return pool.FutureATime },
		Handler:   pool.Handler(),
	}
}

func TestProviderSnapshot(t *testing.T) {
	pool := saddletest.Regression()
	backend := newBackend(pool)
	client := chaintest.Dial(t, backend)

	provider := saddle.NewProvider(client, pool.Address, nil, zap.NewNop())
	snap, err := provider.Snapshot(context.Background(), 14000000)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.ChainID)
	assert.Equal(t, uint64(14000000), snap.BlockNumber)
	assert.Equal(t, pool.FutureATime, snap.Timestamp)
	assert.Equal(t, "50000", snap.InitialA)
	assert.Equal(t, "100000", snap.FutureA)
	assert.Equal(t, "1000000", snap.SwapFee)
	assert.Equal(t, "6000000000", snap.AdminFee)
	assert.Equal(t, pool.LPToken.Hex(), snap.LPToken)
	assert.Equal(t, "4000000000000000000", snap.LPSupply)
	require.Len(t, snap.Tokens, 4)
	assert.Equal(t, "FRAX", snap.Tokens[2].Symbol)
	assert.Equal(t, uint8(18), snap.Tokens[3].Decimals)
	e18 := "1000000000000000000"
	assert.Equal(t, []string{e18, e18, e18, e18}, snap.Balances)
	assert.Equal(t, []string{"1", "1", "1", "1"}, snap.PrecisionMultipliers)

	state, err := saddle.Decode(snap)
	require.NoError(t, err)
	out, err := stableswap.CalculateSwap(state, 0, 1, uint256.MustFromDecimal("100000000000000000"), snap.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, "99979911322743161", out.Dec())
}

func TestProviderSnapshotLatestBlock(t *testing.T) {
	pool := saddletest.Regression()
	backend := newBackend(pool)
	client := chaintest.Dial(t, backend)

	snap, err := saddle.NewProvider(client, pool.Address, nil, nil).Snapshot(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, backend.Head, snap.BlockNumber)
}

func TestProviderMixedDecimals(t *testing.T) {
	pool := saddletest.Regression()
	pool.Tokens = pool.Tokens[:3]
	pool.Tokens[0].Decimals = 6
	pool.Tokens[1].Decimals = 6
	pool.Balances = []*big.Int{
		big.NewInt(1_000_000_000_000),
		big.NewInt(1_200_000_000_000),
		new(big.Int).Mul(big.NewInt(900_000), big.NewInt(1_000_000_000_000_000_000)),
	}
	pool.InitialA = big.NewInt(20000)
	pool.FutureA = big.NewInt(20000)
	pool.SwapFee = big.NewInt(4000000)
	pool.AdminFee = big.NewInt(5000000000)

	client := chaintest.Dial(t, newBackend(pool))
	snap, err := saddle.NewProvider(client, pool.Address, nil, nil).Snapshot(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"1000000000000", "1000000000000", "1"}, snap.PrecisionMultipliers)

	state, err := saddle.Decode(snap)
	require.NoError(t, err)
	q, err := stableswap.CalculateSwapQuote(state, 0, 2, uint256.NewInt(1_000_000_000), snap.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, "999011350055978604006", q.AmountOut.Dec())
}

func TestProviderStaticRegistry(t *testing.T) {
	pool := saddletest.Regression()
	backend := newBackend(pool)
	client := chaintest.Dial(t, backend)

	registry, err := saddle.ParseStaticTokens([]string{
		pool.Tokens[0].Address.Hex() + ":18:DAI",
		pool.Tokens[1].Address.Hex() + ":18",
		pool.Tokens[2].Address.Hex() + ":18",
		pool.Tokens[3].Address.Hex() + ":18",
	})
	require.NoError(t, err)

	snap, err := saddle.NewProvider(client, pool.Address, registry, nil).Snapshot(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "DAI", snap.Tokens[0].Symbol)
	assert.Empty(t, snap.Tokens[1].Symbol)
	// swapStorage, four balances, totalSupply
	assert.Equal(t, 6, backend.Calls())
}

func TestProviderRejectsInvalidTokenSet(t *testing.T) {
	pool := saddletest.Regression()
	pool.Tokens[1].Decimals = 24
	client := chaintest.Dial(t, newBackend(pool))

	_, err := saddle.NewProvider(client, pool.Address, nil, nil).Snapshot(context.Background(), 10)
	assert.ErrorIs(t, err, stableswap.ErrDecimalsExceedMax)
}

func TestChainRegistryFixedCountAndCache(t *testing.T) {
	pool := saddletest.Regression()
	backend := newBackend(pool)
	client := chaintest.Dial(t, backend)

	registry := saddle.NewChainRegistry(client, nil, 2, nil)
	tokens, err := registry.Tokens(context.Background(), pool.Address, 5)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "MIM", tokens[1].Symbol)
	calls := backend.Calls()

	_, err = registry.Tokens(context.Background(), pool.Address, 6)
	require.NoError(t, err)
	assert.Equal(t, calls, backend.Calls(), "cached registry should not call the chain again")
}

func TestChainRegistryUnknownPool(t *testing.T) {
	pool := saddletest.Regression()
	client := chaintest.Dial(t, newBackend(pool))

	registry := saddle.NewChainRegistry(client, nil, 0, nil)
	_, err := registry.Tokens(context.Background(), common.HexToAddress("0x1234"), 5)
	assert.Error(t, err)
}

func TestOnChainQuote(t *testing.T) {
	pool := saddletest.Regression()
	pool.CalculateSwap = func(from, to uint8, dx *big.Int, block uint64) *big.Int {
		if from != 0 || to != 1 || dx.String() != "100000000000000000" || block != 77 {
			return big.NewInt(0)
		}
		out, _ := new(big.Int).SetString("99979911322743161", 10)
		return out
	}
	client := chaintest.Dial(t, newBackend(pool))

	out, err := saddle.NewProvider(client, pool.Address, nil, nil).OnChainQuote(context.Background(), 0, 1, uint256.MustFromDecimal("100000000000000000"), 77)
	require.NoError(t, err)
	assert.Equal(t, "99979911322743161", out.Dec())
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	pool := saddletest.Regression()
	client := chaintest.Dial(t, newBackend(pool))
	snap, err := saddle.NewProvider(client, pool.Address, nil, nil).Snapshot(context.Background(), 42)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshots", "pool.json")
	require.NoError(t, saddle.WriteSnapshotFile(path, snap))

	source := saddle.FileSource{Path: path}
	got, err := source.Snapshot(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	_, err = source.Snapshot(context.Background(), 43)
	assert.Error(t, err, "expected block mismatch error")
}

func TestChainRegistryTransportErrorIsNotEndOfTokens(t *testing.T) {
	pool := saddletest.Regression()
	swapABI, err := saddle.SwapABI()
	require.NoError(t, err)
	getToken := swapABI.Methods["getToken"]

	failures := 1
	serve := pool.Handler()
	backend := newBackend(pool)
	backend.Handler = func(to common.Address, data []byte, block uint64) ([]byte, error) {
		if to == pool.Address && len(data) >= 4 && bytes.Equal(data[:4], getToken.ID) {
			args, err := getToken.Inputs.Unpack(data[4:])
			if err == nil && args[0].(uint8) == 2 && failures > 0 {
				failures--
				return nil, errors.New("503 service unavailable")
			}
		}
		return serve(to, data, block)
	}
	client := chaintest.Dial(t, backend)
	provider := saddle.NewProvider(client, pool.Address, nil, nil)

	_, err = provider.Snapshot(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 service unavailable")

	snap, err := provider.Snapshot(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, snap.Tokens, 4)
	assert.Len(t, snap.Balances, 4)
}

func TestFetchTokenMetaTransportErrorOnSymbol(t *testing.T) {
	pool := saddletest.Regression()
	erc20, err := saddle.ERC20ABI()
	require.NoError(t, err)
	symbol := erc20.Methods["symbol"]

	serve := pool.Handler()
	backend := newBackend(pool)
	backend.Handler = func(to common.Address, data []byte, block uint64) ([]byte, error) {
		if len(data) >= 4 && bytes.Equal(data[:4], symbol.ID) {
			return nil, errors.New("429 too many requests")
		}
		return serve(to, data, block)
	}
	client := chaintest.Dial(t, backend)

	_, err = saddle.FetchTokenMeta(context.Background(), client, pool.Tokens[0].Address, nil, nil)
	require.Error(t, err)
}

func TestFetchTokenMetaRevertingSymbol(t *testing.T) {
	pool := saddletest.Regression()
	pool.Tokens[0].Symbol = ""
	erc20, err := saddle.ERC20ABI()
	require.NoError(t, err)
	symbol := erc20.Methods["symbol"]

	serve := pool.Handler()
	backend := newBackend(pool)
	backend.Handler = func(to common.Address, data []byte, block uint64) ([]byte, error) {
		if len(data) >= 4 && bytes.Equal(data[:4], symbol.ID) {
			return nil, chaintest.ErrReverted
		}
		return serve(to, data, block)
	}
	client := chaintest.Dial(t, backend)

	meta, err := saddle.FetchTokenMeta(context.Background(), client, pool.Tokens[0].Address, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), meta.Decimals)
	assert.Empty(t, meta.Symbol)
}
