package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// GetD computes the StableSwap invariant for pool-precision balances xp and
// amplification a (scaled by APrecision) using Newton's method.
func GetD(xp []*uint256.Int, a *uint256.Int) (*uint256.Int, error) {
	n := uint256.NewInt(uint64(len(xp)))

	var c checked
	s := new(uint256.Int)
	for _, x := range xp {
		s = c.add(s, x)
	}
	if c.err != nil {
		return nil, fmt.Errorf("sum balances: %w", c.err)
	}
	if s.IsZero() {
		return new(uint256.Int), nil
	}

	nA := c.mul(a, n)
	nPlusOne := c.add(n, one)
	d := s.Clone()
	for i := 0; i < MaxLoopLimit; i++ {
		dP := d.Clone()
		for _, x := range xp {
			dP = c.div(c.mul(dP, d), c.mul(x, n))
		}
		prevD := d

		numerator := c.mul(c.add(c.div(c.mul(nA, s), aPrecision), c.mul(dP, n)), d)
		denominator := c.add(
			c.div(c.mul(c.sub(nA, aPrecision), d), aPrecision),
			c.mul(nPlusOne, dP),
		)
		d = c.div(numerator, denominator)
		if c.err != nil {
			return nil, fmt.Errorf("invariant round %d: %w", i, c.err)
		}
		if Within1(d, prevD) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w after %d rounds", ErrConvergenceD, MaxLoopLimit)
}
