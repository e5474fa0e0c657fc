package stableswap

import "github.com/holiman/uint256"

const (
	// PoolPrecisionDecimals is the common precision every balance is scaled to.
	PoolPrecisionDecimals = 18
	// APrecision is the scale of amplification values handled by the solvers.
	APrecision = 100
	// FeeDenominator is the denominator of SwapFee and AdminFee.
	FeeDenominator = 10_000_000_000
	// MaxSwapFee is the largest swap fee numerator a pool may carry (1%).
	MaxSwapFee = 100_000_000
	// MaxAdminFee is the largest admin fee numerator a pool may carry (100%).
	MaxAdminFee = 10_000_000_000
	// MaxLoopLimit caps Newton iterations in both solvers.
	MaxLoopLimit = 256
	// MaxTokens is the exclusive upper bound on pooled tokens.
	MaxTokens = 32
)

var (
	one            = uint256.NewInt(1)
	two            = uint256.NewInt(2)
	aPrecision     = uint256.NewInt(APrecision)
	feeDenominator = uint256.NewInt(FeeDenominator)
	maxSwapFee     = uint256.NewInt(MaxSwapFee)
	maxAdminFee    = uint256.NewInt(MaxAdminFee)
	poolPrecision  = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(PoolPrecisionDecimals))
)
