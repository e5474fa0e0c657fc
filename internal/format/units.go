package format

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"stableScope/internal/stableswap"
)

// FormatUnits renders a base-unit amount as a human decimal string.
func FormatUnits(amount *uint256.Int, decimals uint8) string {
	if amount == nil {
		return "n/a"
	}
	return decimal.NewFromBigInt(amount.ToBig(), -int32(decimals)).String()
}

// ParseUnits converts a human decimal string such as "1.5" into base units.
func ParseUnits(input string, decimals uint8) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	value, err := decimal.NewFromString(input)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", input, err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", input)
	}
	scaled := value.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than %d decimals", input, decimals)
	}
	out, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("amount %q overflows uint256", input)
	}
	return out, nil
}

// FormatFee renders a fee expressed over the fee denominator as a percentage.
func FormatFee(fee *uint256.Int) string {
	if fee == nil {
		return "n/a"
	}
	// FeeDenominator is 100%, so percent = fee / (FeeDenominator / 100).
	pct := decimal.NewFromBigInt(fee.ToBig(), 0).
		Div(decimal.NewFromInt(stableswap.FeeDenominator / 100))
	return pct.String() + "%"
}

// FormatA renders a precise amplification coefficient as a plain one.
func FormatA(preciseA *uint256.Int) string {
	if preciseA == nil {
		return "n/a"
	}
	return decimal.NewFromBigInt(preciseA.ToBig(), 0).
		Div(decimal.NewFromInt(stableswap.APrecision)).String()
}
