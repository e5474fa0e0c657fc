// Package chaintest serves a scripted eth JSON-RPC namespace in process so
// chain-backed code can be tested without a node.
package chaintest

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"stableScope/internal/chain"
)

// ErrReverted is returned for calls the handler does not answer.
var ErrReverted = errors.New("execution reverted")

// CallHandler answers an eth_call to `to` with calldata at block.
type CallHandler func(to common.Address, data []byte, block uint64) ([]byte, error)

// Backend is the fake eth namespace.
type Backend struct {
	ChainID uint64
	Head    uint64
	// BlockTime returns the timestamp of a block; defaults to 1_700_000_000 + number.
	BlockTime func(number uint64) uint64
	Handler   CallHandler

	mu      sync.Mutex
	calls   int
	headers int
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

// ChainId serves eth_chainId.
func (b *Backend) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).SetUint64(b.ChainID))
}

// BlockNumber serves eth_blockNumber.
func (b *Backend) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(b.Head)
}

// GetBlockByNumber serves eth_getBlockByNumber with a header-only block.
func (b *Backend) GetBlockByNumber(_ context.Context, number gethrpc.BlockNumber, _ bool) (*types.Header, error) {
	b.mu.Lock()
	b.headers++
	b.mu.Unlock()

	n := b.resolve(number)
	if n > b.Head {
		return nil, nil
	}
	return &types.Header{
		Number:     new(big.Int).SetUint64(n),
		Time:       b.timeOf(n),
		Difficulty: new(big.Int),
	}, nil
}

// Call serves eth_call.
func (b *Backend) Call(_ context.Context, args callArgs, block gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	if args.To == nil || b.Handler == nil {
		return nil, ErrReverted
	}
	data := args.Input
	if len(data) == 0 {
		data = args.Data
	}
	n := b.Head
	if number, ok := block.Number(); ok {
		n = b.resolve(number)
	}
	return b.Handler(*args.To, data, n)
}

// Calls returns how many eth_call requests were served.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Headers returns how many eth_getBlockByNumber requests were served.
func (b *Backend) Headers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headers
}

func (b *Backend) resolve(number gethrpc.BlockNumber) uint64 {
	if number < 0 {
		return b.Head
	}
	return uint64(number)
}

func (b *Backend) timeOf(number uint64) uint64 {
	if b.BlockTime != nil {
		return b.BlockTime(number)
	}
	return 1_700_000_000 + number
}

// Dial registers the backend on an in-process RPC server and returns a
// chain client connected to it.
func Dial(t testing.TB, b *Backend, opts ...chain.Option) *chain.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", b); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	client := chain.NewClientFromRPC(gethrpc.DialInProc(srv), opts...)
	t.Cleanup(func() {
		client.Close()
		srv.Stop()
	})
	return client
}
