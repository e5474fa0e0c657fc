package saddle

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stableScope/internal/chain"
	"stableScope/internal/model"
	"stableScope/internal/stableswap"
)

// TokenRegistry resolves the ordered token set of a pool.
type TokenRegistry interface {
	Tokens(ctx context.Context, pool common.Address, block uint64) ([]model.TokenMeta, error)
}

// StaticRegistry serves a fixed token list.
type StaticRegistry []model.TokenMeta

// Tokens returns a copy of the configured list.
func (r StaticRegistry) Tokens(_ context.Context, _ common.Address, _ uint64) ([]model.TokenMeta, error) {
	if len(r) == 0 {
		return nil, fmt.Errorf("static token list is empty")
	}
	out := make([]model.TokenMeta, len(r))
	copy(out, r)
	return out, nil
}

// ParseStaticTokens parses entries of the form address:decimals[:symbol].
func ParseStaticTokens(entries []string) (StaticRegistry, error) {
	out := make(StaticRegistry, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid token entry %q (want address:decimals[:symbol])", entry)
		}
		address := strings.TrimSpace(parts[0])
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid token address: %s", address)
		}
		decimals, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid token decimals %q: %w", parts[1], err)
		}
		meta := model.TokenMeta{
			Address:  common.HexToAddress(address).Hex(),
			Decimals: uint8(decimals),
		}
		if len(parts) == 3 {
			meta.Symbol = strings.TrimSpace(parts[2])
		}
		out = append(out, meta)
	}
	return out, nil
}

// ChainRegistry discovers pool tokens with getToken and reads their
// metadata from the token contracts. Token sets are immutable per pool and
// are cached after the first lookup.
type ChainRegistry struct {
	chain  *chain.Client
	cache  *TokenMetaCache
	count  int
	logger *zap.Logger

	mu    sync.Mutex
	pools map[common.Address][]common.Address
}

// NewChainRegistry builds a registry. count fixes the number of pooled
// tokens; zero reads getToken until the pool reverts.
func NewChainRegistry(chainClient *chain.Client, cache *TokenMetaCache, count int, logger *zap.Logger) *ChainRegistry {
	if cache == nil {
		cache = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChainRegistry{
		chain:  chainClient,
		cache:  cache,
		count:  count,
		logger: logger,
		pools:  make(map[common.Address][]common.Address),
	}
}

// Tokens returns token metadata in pool index order.
func (r *ChainRegistry) Tokens(ctx context.Context, pool common.Address, block uint64) ([]model.TokenMeta, error) {
	addresses, err := r.tokenAddresses(ctx, pool, block)
	if err != nil {
		return nil, err
	}

	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}

	out := make([]model.TokenMeta, len(addresses))
	for i, address := range addresses {
		if meta, ok := r.cache.Get(address); ok {
			out[i] = meta
			continue
		}
		meta, err := FetchTokenMeta(ctx, r.chain, address, blockPtr, r.logger)
		if err != nil {
			return nil, fmt.Errorf("token %d metadata: %w", i, err)
		}
		r.cache.Set(address, meta)
		out[i] = meta
	}
	return out, nil
}

func (r *ChainRegistry) tokenAddresses(ctx context.Context, pool common.Address, block uint64) ([]common.Address, error) {
	r.mu.Lock()
	cached, ok := r.pools[pool]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}
	if r.chain == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if r.count < 0 || r.count >= stableswap.MaxTokens {
		return nil, fmt.Errorf("%w: configured %d", stableswap.ErrInvalidTokenCount, r.count)
	}

	parsed, err := SwapABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap abi: %w", err)
	}
	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}

	limit := r.count
	if limit == 0 {
		limit = stableswap.MaxTokens - 1
	}
	addresses := make([]common.Address, 0, limit)
	for i := 0; i < limit; i++ {
		values, err := callMethod(ctx, r.chain, pool, parsed, "getToken", blockPtr, uint8(i))
		if err != nil {
			if r.count == 0 && len(addresses) > 0 && isRevert(err) {
				r.logger.Debug("end of token list", zap.String("pool", pool.Hex()), zap.Int("index", i), zap.Error(err))
				break
			}
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		address, err := asAddress(values[0])
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		addresses = append(addresses, address)
	}

	r.mu.Lock()
	r.pools[pool] = addresses
	r.mu.Unlock()
	return addresses, nil
}
