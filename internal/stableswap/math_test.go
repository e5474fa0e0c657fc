package stableswap

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithin1(t *testing.T) {
	testCases := []struct {
		a, b uint64
		want bool
	}{
		{a: 5, b: 5, want: true},
		{a: 5, b: 6, want: true},
		{a: 6, b: 5, want: true},
		{a: 5, b: 7, want: false},
		{a: 0, b: 1, want: true},
		{a: 100, b: 0, want: false},
	}

	for _, tc := range testCases {
		a, b := uint256.NewInt(tc.a), uint256.NewInt(tc.b)
		assert.Equal(t, tc.want, Within1(a, b), "within1(%d, %d)", tc.a, tc.b)
		assert.Equal(t, Within1(a, b), Within1(b, a), "within1 must be symmetric for %d, %d", tc.a, tc.b)
	}
}

func TestDifference(t *testing.T) {
	assert.Equal(t, uint64(3), Difference(uint256.NewInt(10), uint256.NewInt(7)).Uint64())
	assert.Equal(t, uint64(3), Difference(uint256.NewInt(7), uint256.NewInt(10)).Uint64())
	assert.True(t, Difference(uint256.NewInt(7), uint256.NewInt(7)).IsZero())
}

func TestCheckedKeepsFirstError(t *testing.T) {
	var c checked
	maxU := new(uint256.Int).SetAllOne()

	_ = c.sub(uint256.NewInt(1), uint256.NewInt(2))
	require.ErrorIs(t, c.err, ErrArithmeticUnderflow)

	got := c.add(maxU, one)
	assert.True(t, got.IsZero())
	assert.ErrorIs(t, c.err, ErrArithmeticUnderflow)
}

func TestCheckedFailures(t *testing.T) {
	maxU := new(uint256.Int).SetAllOne()

	var add checked
	add.add(maxU, one)
	assert.ErrorIs(t, add.err, ErrArithmeticOverflow)

	var mul checked
	mul.mul(maxU, two)
	assert.ErrorIs(t, mul.err, ErrArithmeticOverflow)

	var div checked
	div.div(one, new(uint256.Int))
	assert.ErrorIs(t, div.err, ErrDivisionByZero)

	var ok checked
	got := ok.mulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, ok.err)
	assert.Equal(t, uint64(10), got.Uint64())
}
