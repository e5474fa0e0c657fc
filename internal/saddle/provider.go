package saddle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stableScope/internal/chain"
	"stableScope/internal/model"
)

// Provider reads pool snapshots from a Saddle swap contract.
type Provider struct {
	chain    *chain.Client
	pool     common.Address
	registry TokenRegistry
	logger   *zap.Logger
}

// NewProvider builds a Provider. A nil registry discovers tokens on chain.
func NewProvider(chainClient *chain.Client, pool common.Address, registry TokenRegistry, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewChainRegistry(chainClient, nil, 0, logger)
	}
	return &Provider{
		chain:    chainClient,
		pool:     pool,
		registry: registry,
		logger:   logger,
	}
}

// Pool returns the swap contract address.
func (p *Provider) Pool() common.Address {
	return p.pool
}

// Snapshot reads the pool state at block; zero means the latest block.
// Every read is pinned to the same block.
func (p *Provider) Snapshot(ctx context.Context, block uint64) (model.PoolSnapshot, error) {
	if p.chain == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain client is nil")
	}

	if block == 0 {
		latest, err := p.chain.LatestBlockNumber(ctx)
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("get latest block: %w", err)
		}
		block = latest
	}
	blockPtr := new(big.Int).SetUint64(block)

	chainID, err := p.chain.GetChainID(ctx)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return model.PoolSnapshot{}, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	ts, err := p.chain.BlockTimestamp(ctx, block)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("block timestamp %d: %w", block, err)
	}

	meta, err := p.swapStorage(ctx, blockPtr)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	tokens, err := p.registry.Tokens(ctx, p.pool, block)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("resolve tokens: %w", err)
	}
	multipliers, err := Multipliers(tokens)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	balances := make([]string, len(tokens))
	var lpSupply string
	g, gctx := errgroup.WithContext(ctx)
	for i := range tokens {
		i := i
		g.Go(func() error {
			balance, err := p.tokenBalance(gctx, uint8(i), blockPtr)
			if err != nil {
				return fmt.Errorf("token %d balance: %w", i, err)
			}
			balances[i] = balance.Dec()
			return nil
		})
	}
	g.Go(func() error {
		supply, err := p.lpSupply(gctx, common.HexToAddress(meta.LPToken), blockPtr)
		if err != nil {
			return fmt.Errorf("lp supply: %w", err)
		}
		lpSupply = supply.Dec()
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.PoolSnapshot{}, err
	}

	p.logger.Debug("pool snapshot",
		zap.String("pool", p.pool.Hex()),
		zap.Uint64("block", block),
		zap.Uint64("timestamp", ts),
		zap.Int("tokens", len(tokens)),
	)

	return model.PoolSnapshot{
		ChainID:              chainID.Uint64(),
		Pool:                 p.pool.Hex(),
		BlockNumber:          block,
		Timestamp:            ts,
		PoolMeta:             meta,
		LPSupply:             lpSupply,
		Tokens:               tokens,
		Balances:             balances,
		PrecisionMultipliers: multipliers,
		FetchedAt:            time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// OnChainQuote asks the contract for calculateSwap at block.
func (p *Provider) OnChainQuote(ctx context.Context, from, to uint8, dx *uint256.Int, block uint64) (*uint256.Int, error) {
	parsed, err := SwapABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap abi: %w", err)
	}
	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}
	values, err := callMethod(ctx, p.chain, p.pool, parsed, "calculateSwap", blockPtr, from, to, dx.ToBig())
	if err != nil {
		return nil, err
	}
	out, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("calculateSwap: %w", err)
	}
	return fromBig(out)
}

func (p *Provider) swapStorage(ctx context.Context, block *big.Int) (model.PoolMeta, error) {
	parsed, err := SwapABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse swap abi: %w", err)
	}
	values, err := callMethod(ctx, p.chain, p.pool, parsed, "swapStorage", block)
	if err != nil {
		return model.PoolMeta{}, err
	}
	if len(values) != 7 {
		return model.PoolMeta{}, fmt.Errorf("swapStorage: want 7 values, got %d", len(values))
	}

	amounts := make([]*big.Int, 6)
	for i := range amounts {
		if amounts[i], err = asBigInt(values[i]); err != nil {
			return model.PoolMeta{}, fmt.Errorf("swapStorage field %d: %w", i, err)
		}
	}
	initialATime, err := asUint64(amounts[2])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("initialATime: %w", err)
	}
	futureATime, err := asUint64(amounts[3])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("futureATime: %w", err)
	}
	lpToken, err := asAddress(values[6])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("lpToken: %w", err)
	}

	return model.PoolMeta{
		InitialA:     amounts[0].String(),
		FutureA:      amounts[1].String(),
		InitialATime: initialATime,
		FutureATime:  futureATime,
		SwapFee:      amounts[4].String(),
		AdminFee:     amounts[5].String(),
		LPToken:      lpToken.Hex(),
	}, nil
}

func (p *Provider) tokenBalance(ctx context.Context, index uint8, block *big.Int) (*uint256.Int, error) {
	parsed, err := SwapABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap abi: %w", err)
	}
	values, err := callMethod(ctx, p.chain, p.pool, parsed, "getTokenBalance", block, index)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	return fromBig(balance)
}

func (p *Provider) lpSupply(ctx context.Context, lpToken common.Address, block *big.Int) (*uint256.Int, error) {
	if lpToken == (common.Address{}) {
		return new(uint256.Int), nil
	}
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, p.chain, lpToken, parsed, "totalSupply", block)
	if err != nil {
		return nil, err
	}
	supply, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	return fromBig(supply)
}
