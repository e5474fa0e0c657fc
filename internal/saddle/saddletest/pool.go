// Package saddletest scripts a Saddle swap contract and its tokens behind
// a chaintest backend.
package saddletest

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"stableScope/internal/chain/chaintest"
	"stableScope/internal/saddle"
)

// Token is a pooled ERC20 token.
type Token struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
}

// Pool is a scripted swap contract.
type Pool struct {
	Address      common.Address
	LPToken      common.Address
	LPSupply     *big.Int
	Tokens       []Token
	InitialA     *big.Int
	FutureA      *big.Int
	InitialATime uint64
	FutureATime  uint64
	SwapFee      *big.Int
	AdminFee     *big.Int
	Balances     []*big.Int
	// BalanceAt overrides Balances when set.
	BalanceAt func(block uint64, index int) *big.Int
	// CalculateSwap answers calculateSwap when set.
	CalculateSwap func(from, to uint8, dx *big.Int, block uint64) *big.Int
}

// Handler returns the eth_call handler serving the pool, its LP token and
// its pooled tokens.
func (p *Pool) Handler() chaintest.CallHandler {
	return func(to common.Address, data []byte, block uint64) ([]byte, error) {
		if len(data) < 4 {
			return nil, chaintest.ErrReverted
		}
		switch {
		case to == p.Address:
			return p.swapCall(data, block)
		case to == p.LPToken:
			return p.erc20Call(data, func(method *abi.Method) ([]byte, error) {
				if method.Name != "totalSupply" {
					return nil, chaintest.ErrReverted
				}
				return method.Outputs.Pack(p.LPSupply)
			})
		}
		for _, token := range p.Tokens {
			if token.Address != to {
				continue
			}
			token := token
			return p.erc20Call(data, func(method *abi.Method) ([]byte, error) {
				switch method.Name {
				case "decimals":
					return method.Outputs.Pack(token.Decimals)
				case "symbol":
					return method.Outputs.Pack(token.Symbol)
				default:
					return nil, chaintest.ErrReverted
				}
			})
		}
		return nil, chaintest.ErrReverted
	}
}

func (p *Pool) swapCall(data []byte, block uint64) ([]byte, error) {
	parsed, err := saddle.SwapABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, chaintest.ErrReverted
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method.Name, err)
	}

	switch method.Name {
	case "swapStorage":
		return method.Outputs.Pack(
			p.InitialA,
			p.FutureA,
			new(big.Int).SetUint64(p.InitialATime),
			new(big.Int).SetUint64(p.FutureATime),
			p.SwapFee,
			p.AdminFee,
			p.LPToken,
		)
	case "getToken":
		index := int(args[0].(uint8))
		if index >= len(p.Tokens) {
			return nil, chaintest.ErrReverted
		}
		return method.Outputs.Pack(p.Tokens[index].Address)
	case "getTokenBalance":
		index := int(args[0].(uint8))
		if index >= len(p.Tokens) {
			return nil, chaintest.ErrReverted
		}
		if p.BalanceAt != nil {
			return method.Outputs.Pack(p.BalanceAt(block, index))
		}
		return method.Outputs.Pack(p.Balances[index])
	case "calculateSwap":
		if p.CalculateSwap == nil {
			return nil, chaintest.ErrReverted
		}
		return method.Outputs.Pack(p.CalculateSwap(args[0].(uint8), args[1].(uint8), args[2].(*big.Int), block))
	default:
		return nil, chaintest.ErrReverted
	}
}

func (p *Pool) erc20Call(data []byte, answer func(method *abi.Method) ([]byte, error)) ([]byte, error) {
	parsed, err := saddle.ERC20ABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, chaintest.ErrReverted
	}
	return answer(method)
}

// Regression returns a four-token 18-decimal pool ramping A from 500 to
// 1000 between InitialATime and FutureATime.
func Regression() *Pool {
	e18, _ := new(big.Int).SetString("1000000000000000000", 10)
	tokens := []Token{
		{Address: common.HexToAddress("0x00000000000000000000000000000000000000a1"), Decimals: 18, Symbol: "DAI"},
		{Address: common.HexToAddress("0x00000000000000000000000000000000000000a2"), Decimals: 18, Symbol: "MIM"},
		{Address: common.HexToAddress("0x00000000000000000000000000000000000000a3"), Decimals: 18, Symbol: "FRAX"},
		{Address: common.HexToAddress("0x00000000000000000000000000000000000000a4"), Decimals: 18, Symbol: "LUSD"},
	}
	balances := make([]*big.Int, len(tokens))
	for i := range balances {
		balances[i] = new(big.Int).Set(e18)
	}
	return &Pool{
		Address:      common.HexToAddress("0x0000000000000000000000000000000000000abc"),
		LPToken:      common.HexToAddress("0x0000000000000000000000000000000000000def"),
		LPSupply:     new(big.Int).Mul(e18, big.NewInt(4)),
		Tokens:       tokens,
		InitialA:     big.NewInt(50000),
		FutureA:      big.NewInt(100000),
		InitialATime: 1641351112,
		FutureATime:  1642668591,
		SwapFee:      big.NewInt(1000000),
		AdminFee:     big.NewInt(6000000000),
		Balances:     balances,
	}
}
