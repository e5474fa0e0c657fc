package format

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
	}{
		{"whole", "1000000000000000000", 18, "1"},
		{"fraction", "99979911322743161", 18, "0.099979911322743161"},
		{"six decimals", "1500000", 6, "1.5"},
		{"zero decimals", "42", 0, "42"},
		{"zero", "0", 18, "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount := uint256.MustFromDecimal(tc.amount)
			assert.Equal(t, tc.want, FormatUnits(amount, tc.decimals))
		})
	}
	assert.Equal(t, "n/a", FormatUnits(nil, 18))
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits("0.1", 18)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000", got.Dec())

	got, err = ParseUnits(" 2.5 ", 6)
	require.NoError(t, err)
	assert.Equal(t, "2500000", got.Dec())

	got, err = ParseUnits("7", 0)
	require.NoError(t, err)
	assert.Equal(t, "7", got.Dec())
}

func TestParseUnitsRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "-1", "0.0000001"} {
		_, err := ParseUnits(input, 6)
		assert.Error(t, err, input)
	}
	_, err := ParseUnits("1000000000000000000000000000000000000000000000000000000000000000000000000000000", 18)
	assert.Error(t, err)
}

func TestFormatFeeAndA(t *testing.T) {
	assert.Equal(t, "0.01%", FormatFee(uint256.NewInt(1_000_000)))
	assert.Equal(t, "60%", FormatFee(uint256.NewInt(6_000_000_000)))
	assert.Equal(t, "1000", FormatA(uint256.NewInt(100_000)))
	assert.Equal(t, "500.18", FormatA(uint256.NewInt(50_018)))
}
