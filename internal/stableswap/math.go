package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Within1 reports whether a and b differ by at most one.
func Within1(a, b *uint256.Int) bool {
	return Difference(a, b).Cmp(one) <= 0
}

// Difference returns |a - b|.
func Difference(a, b *uint256.Int) *uint256.Int {
	if a.Gt(b) {
		return new(uint256.Int).Sub(a, b)
	}
	return new(uint256.Int).Sub(b, a)
}

// checked performs 256-bit arithmetic and keeps the first failure.
// Once err is set every further operation returns zero.
type checked struct {
	err error
}

func (c *checked) add(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		c.err = fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, x.Dec(), y.Dec())
	}
	return z
}

func (c *checked) sub(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		c.err = fmt.Errorf("%w: %s - %s", ErrArithmeticUnderflow, x.Dec(), y.Dec())
	}
	return z
}

func (c *checked) mul(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		c.err = fmt.Errorf("%w: %s * %s", ErrArithmeticOverflow, x.Dec(), y.Dec())
	}
	return z
}

func (c *checked) div(x, y *uint256.Int) *uint256.Int {
	if c.err != nil {
		return new(uint256.Int)
	}
	if y.IsZero() {
		c.err = fmt.Errorf("%w: %s / 0", ErrDivisionByZero, x.Dec())
		return new(uint256.Int)
	}
	return new(uint256.Int).Div(x, y)
}

// mulDiv computes x * y / d with both steps checked.
func (c *checked) mulDiv(x, y, d *uint256.Int) *uint256.Int {
	return c.div(c.mul(x, y), d)
}
