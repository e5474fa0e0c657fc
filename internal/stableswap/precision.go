package stableswap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PrecisionMultipliers validates the pooled token set and returns the
// multiplier that scales each token to PoolPrecisionDecimals.
func PrecisionMultipliers(tokens []common.Address, decimals []uint8) ([]*uint256.Int, error) {
	if err := checkTokenCount(len(tokens)); err != nil {
		return nil, err
	}
	if len(tokens) != len(decimals) {
		return nil, fmt.Errorf("%w: %d tokens, %d decimals", ErrBalanceMultiplierMismatch, len(tokens), len(decimals))
	}

	ten := uint256.NewInt(10)
	multipliers := make([]*uint256.Int, len(tokens))
	for i, token := range tokens {
		if i > 0 {
			if token == (common.Address{}) {
				return nil, fmt.Errorf("%w: index %d", ErrZeroAddressToken, i)
			}
			if token == tokens[0] {
				return nil, fmt.Errorf("%w: %s at index %d", ErrDuplicateToken, token.Hex(), i)
			}
		}
		if decimals[i] > PoolPrecisionDecimals {
			return nil, fmt.Errorf("%w: %s has %d decimals", ErrDecimalsExceedMax, token.Hex(), decimals[i])
		}
		exp := uint256.NewInt(uint64(PoolPrecisionDecimals - decimals[i]))
		multipliers[i] = new(uint256.Int).Exp(ten, exp)
	}
	return multipliers, nil
}

// Normalize scales native balances to pool precision. The result is a
// fresh slice; the inputs are not modified.
func Normalize(balances, multipliers []*uint256.Int) ([]*uint256.Int, error) {
	if len(balances) != len(multipliers) {
		return nil, fmt.Errorf("%w: %d balances, %d multipliers", ErrBalanceMultiplierMismatch, len(balances), len(multipliers))
	}
	if err := checkTokenCount(len(balances)); err != nil {
		return nil, err
	}

	var c checked
	xp := make([]*uint256.Int, len(balances))
	for i := range balances {
		xp[i] = c.mul(balances[i], multipliers[i])
	}
	if c.err != nil {
		return nil, fmt.Errorf("normalize balances: %w", c.err)
	}
	return xp, nil
}
