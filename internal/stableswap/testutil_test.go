package stableswap

import "github.com/holiman/uint256"

const (
	rampStart = 1641351112
	rampEnd   = 1642668591
)

func u(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func repeat(s string, n int) []*uint256.Int {
	out := make([]*uint256.Int, n)
	for i := range out {
		out[i] = u(s)
	}
	return out
}

// regressionPool is a four-token 18-decimal pool ramping A from 500 to 1000.
func regressionPool() PoolState {
	return PoolState{
		InitialA:             uint256.NewInt(50000),
		FutureA:              uint256.NewInt(100000),
		InitialATime:         rampStart,
		FutureATime:          rampEnd,
		SwapFee:              uint256.NewInt(1000000),
		AdminFee:             uint256.NewInt(6000000000),
		Balances:             repeat("1000000000000000000", 4),
		PrecisionMultipliers: repeat("1", 4),
	}
}

// mixedPool holds two 6-decimal tokens and one 18-decimal token at A=200.
func mixedPool() PoolState {
	return PoolState{
		InitialA:     uint256.NewInt(20000),
		FutureA:      uint256.NewInt(20000),
		InitialATime: rampStart,
		FutureATime:  rampEnd,
		SwapFee:      uint256.NewInt(4000000),
		AdminFee:     uint256.NewInt(5000000000),
		Balances: []*uint256.Int{
			u("1000000000000"),
			u("1200000000000"),
			u("900000000000000000000000"),
		},
		PrecisionMultipliers: []*uint256.Int{
			u("1000000000000"),
			u("1000000000000"),
			u("1"),
		},
	}
}
