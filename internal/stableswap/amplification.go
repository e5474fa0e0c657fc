package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// CurrentA returns the amplification coefficient in effect at now, scaled by
// APrecision. While a ramp is in progress A moves linearly from InitialA to
// FutureA. A time before InitialATime is an underflow, not a clamp.
func CurrentA(pool PoolState, now uint64) (*uint256.Int, error) {
	if pool.InitialA == nil || pool.FutureA == nil {
		return nil, fmt.Errorf("amplification is not set")
	}

	a1 := pool.FutureA
	if now >= pool.FutureATime {
		return a1.Clone(), nil
	}

	var c checked
	a0 := pool.InitialA
	elapsed := c.sub(uint256.NewInt(now), uint256.NewInt(pool.InitialATime))
	span := c.sub(uint256.NewInt(pool.FutureATime), uint256.NewInt(pool.InitialATime))

	var a *uint256.Int
	if a1.Gt(a0) {
		a = c.add(a0, c.mulDiv(c.sub(a1, a0), elapsed, span))
	} else {
		a = c.sub(a0, c.mulDiv(c.sub(a0, a1), elapsed, span))
	}
	if c.err != nil {
		return nil, fmt.Errorf("ramp amplification at %d: %w", now, c.err)
	}
	return a, nil
}

// GetA returns the amplification coefficient at now without precision.
func GetA(pool PoolState, now uint64) (*uint256.Int, error) {
	a, err := CurrentA(pool, now)
	if err != nil {
		return nil, err
	}
	return a.Div(a, aPrecision), nil
}
