package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// GetY returns the balance of token `to`, in pool precision, that keeps the
// invariant unchanged once token `from` holds x.
func GetY(preciseA *uint256.Int, from, to int, x *uint256.Int, xp []*uint256.Int) (*uint256.Int, error) {
	return solveY(preciseA, from, to, x, xp, MaxLoopLimit)
}

func solveY(preciseA *uint256.Int, from, to int, x *uint256.Int, xp []*uint256.Int, maxRounds int) (*uint256.Int, error) {
	if err := checkIndices(from, to, len(xp)); err != nil {
		return nil, err
	}

	d, err := GetD(xp, preciseA)
	if err != nil {
		return nil, err
	}

	var c checked
	n := uint256.NewInt(uint64(len(xp)))
	nA := c.mul(n, preciseA)
	cc := d.Clone()
	s := new(uint256.Int)
	for k := range xp {
		var xk *uint256.Int
		switch k {
		case from:
			xk = x
		case to:
			continue
		default:
			xk = xp[k]
		}
		s = c.add(s, xk)
		cc = c.div(c.mul(cc, d), c.mul(xk, n))
	}
	cc = c.div(c.mul(c.mul(cc, d), aPrecision), c.mul(nA, n))
	b := c.add(s, c.div(c.mul(d, aPrecision), nA))
	if c.err != nil {
		return nil, fmt.Errorf("prepare y solve: %w", c.err)
	}

	y := d.Clone()
	for i := 0; i < maxRounds; i++ {
		yPrev := y
		y = c.div(c.add(c.mul(y, y), cc), c.sub(c.add(c.mul(y, two), b), d))
		if c.err != nil {
			return nil, fmt.Errorf("y round %d: %w", i, c.err)
		}
		if Within1(y, yPrev) {
			return y, nil
		}
	}
	return nil, fmt.Errorf("%w after %d rounds", ErrConvergenceY, maxRounds)
}

// checkIndices rejects a self swap and any index outside [0, n).
func checkIndices(from, to, n int) error {
	if from == to {
		return fmt.Errorf("%w: %d", ErrSameTokenIndex, from)
	}
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: from %d, to %d, tokens %d", ErrTokenIndexOutOfRange, from, to, n)
	}
	return nil
}
