package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// PoolState is an immutable snapshot of a StableSwap pool.
//
// InitialA and FutureA are already scaled by APrecision. SwapFee and
// AdminFee are numerators over FeeDenominator. Balances are in each
// token's native precision; PrecisionMultipliers[i] is 10^(18-decimals[i]).
type PoolState struct {
	InitialA             *uint256.Int
	FutureA              *uint256.Int
	InitialATime         uint64
	FutureATime          uint64
	SwapFee              *uint256.Int
	AdminFee             *uint256.Int
	Balances             []*uint256.Int
	PrecisionMultipliers []*uint256.Int
}

// NumTokens returns the number of pooled tokens.
func (p PoolState) NumTokens() int {
	return len(p.Balances)
}

// Validate checks the structural invariants of the snapshot.
func (p PoolState) Validate() error {
	if err := checkTokenCount(len(p.Balances)); err != nil {
		return err
	}
	if len(p.Balances) != len(p.PrecisionMultipliers) {
		return fmt.Errorf("%w: %d balances, %d multipliers", ErrBalanceMultiplierMismatch, len(p.Balances), len(p.PrecisionMultipliers))
	}
	if p.InitialA == nil || p.FutureA == nil {
		return fmt.Errorf("amplification is not set")
	}
	if p.SwapFee == nil || p.AdminFee == nil {
		return fmt.Errorf("fees are not set")
	}
	if p.SwapFee.Gt(maxSwapFee) {
		return fmt.Errorf("%w: swap fee %s > %d", ErrFeeExceedsMax, p.SwapFee.Dec(), MaxSwapFee)
	}
	if p.AdminFee.Gt(maxAdminFee) {
		return fmt.Errorf("%w: admin fee %s > %d", ErrFeeExceedsMax, p.AdminFee.Dec(), uint64(MaxAdminFee))
	}
	for i := range p.Balances {
		if p.Balances[i] == nil {
			return fmt.Errorf("balance %d is not set", i)
		}
		if p.PrecisionMultipliers[i] == nil || p.PrecisionMultipliers[i].IsZero() {
			return fmt.Errorf("%w: multiplier %d", ErrDivisionByZero, i)
		}
	}
	return nil
}

func checkTokenCount(n int) error {
	if n < 1 || n >= MaxTokens {
		return fmt.Errorf("%w: %d", ErrInvalidTokenCount, n)
	}
	return nil
}
