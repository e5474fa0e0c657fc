package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Quote is the outcome of a simulated swap. All amounts are in the native
// precision of the output token.
type Quote struct {
	AmountOut *uint256.Int
	SwapFee   *uint256.Int
	AdminFee  *uint256.Int
}

// CalculateSwap returns how many units of token `to` a swap of dx units of
// token `from` yields at time now.
func CalculateSwap(pool PoolState, from, to int, dx *uint256.Int, now uint64) (*uint256.Int, error) {
	q, err := CalculateSwapQuote(pool, from, to, dx, now)
	if err != nil {
		return nil, err
	}
	return q.AmountOut, nil
}

// CalculateSwapQuote is CalculateSwap with the fee breakdown.
func CalculateSwapQuote(pool PoolState, from, to int, dx *uint256.Int, now uint64) (Quote, error) {
	if err := pool.Validate(); err != nil {
		return Quote{}, err
	}
	if dx == nil {
		return Quote{}, fmt.Errorf("amount in is not set")
	}

	xp, err := Normalize(pool.Balances, pool.PrecisionMultipliers)
	if err != nil {
		return Quote{}, err
	}
	if err := checkIndices(from, to, len(xp)); err != nil {
		return Quote{}, err
	}

	mult := pool.PrecisionMultipliers
	var c checked
	x := c.add(c.mul(dx, mult[from]), xp[from])
	if c.err != nil {
		return Quote{}, fmt.Errorf("scale amount in: %w", c.err)
	}

	a, err := CurrentA(pool, now)
	if err != nil {
		return Quote{}, err
	}
	y, err := GetY(a, from, to, x, xp)
	if err != nil {
		return Quote{}, err
	}

	dy := c.sub(c.sub(xp[to], y), one)
	dyFee := c.mulDiv(dy, pool.SwapFee, feeDenominator)
	out := c.div(c.sub(dy, dyFee), mult[to])
	adminFee := c.div(c.mulDiv(dyFee, pool.AdminFee, feeDenominator), mult[to])
	fee := c.div(dyFee, mult[to])
	if c.err != nil {
		return Quote{}, fmt.Errorf("swap output: %w", c.err)
	}

	return Quote{AmountOut: out, SwapFee: fee, AdminFee: adminFee}, nil
}

// VirtualPrice returns D * 10^18 / lpSupply at time now, or zero when no LP
// tokens exist.
func VirtualPrice(pool PoolState, now uint64, lpSupply *uint256.Int) (*uint256.Int, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	xp, err := Normalize(pool.Balances, pool.PrecisionMultipliers)
	if err != nil {
		return nil, err
	}
	a, err := CurrentA(pool, now)
	if err != nil {
		return nil, err
	}
	d, err := GetD(xp, a)
	if err != nil {
		return nil, err
	}
	if lpSupply == nil || lpSupply.IsZero() {
		return new(uint256.Int), nil
	}

	var c checked
	price := c.mulDiv(d, poolPrecision, lpSupply)
	if c.err != nil {
		return nil, fmt.Errorf("virtual price: %w", c.err)
	}
	return price, nil
}
