package saddle

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stableScope/internal/model"
	"stableScope/internal/stableswap"
)

// ParseAmount parses a base-10 integer string into a 256-bit value.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("parse amount %q: not a base-10 unsigned integer", s)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("value %s exceeds 256 bits", v)
	}
	return out, nil
}

// Decode converts a snapshot into a validated pool state.
func Decode(snap model.PoolSnapshot) (stableswap.PoolState, error) {
	if len(snap.Balances) != len(snap.PrecisionMultipliers) {
		return stableswap.PoolState{}, fmt.Errorf("%w: %d balances, %d multipliers",
			stableswap.ErrBalanceMultiplierMismatch, len(snap.Balances), len(snap.PrecisionMultipliers))
	}

	var err error
	state := stableswap.PoolState{
		InitialATime: snap.InitialATime,
		FutureATime:  snap.FutureATime,
	}
	fields := []struct {
		name string
		raw  string
		dst  **uint256.Int
	}{
		{name: "initial_a", raw: snap.InitialA, dst: &state.InitialA},
		{name: "future_a", raw: snap.FutureA, dst: &state.FutureA},
		{name: "swap_fee", raw: snap.SwapFee, dst: &state.SwapFee},
		{name: "admin_fee", raw: snap.AdminFee, dst: &state.AdminFee},
	}
	for _, f := range fields {
		if *f.dst, err = ParseAmount(f.raw); err != nil {
			return stableswap.PoolState{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	state.Balances = make([]*uint256.Int, len(snap.Balances))
	state.PrecisionMultipliers = make([]*uint256.Int, len(snap.PrecisionMultipliers))
	for i := range snap.Balances {
		if state.Balances[i], err = ParseAmount(snap.Balances[i]); err != nil {
			return stableswap.PoolState{}, fmt.Errorf("balance %d: %w", i, err)
		}
		if state.PrecisionMultipliers[i], err = ParseAmount(snap.PrecisionMultipliers[i]); err != nil {
			return stableswap.PoolState{}, fmt.Errorf("multiplier %d: %w", i, err)
		}
	}

	if err := state.Validate(); err != nil {
		return stableswap.PoolState{}, err
	}
	return state, nil
}

// Multipliers derives precision multipliers from token metadata.
func Multipliers(tokens []model.TokenMeta) ([]string, error) {
	addresses := make([]common.Address, len(tokens))
	decimals := make([]uint8, len(tokens))
	for i, token := range tokens {
		if !common.IsHexAddress(token.Address) {
			return nil, fmt.Errorf("invalid token address: %s", token.Address)
		}
		addresses[i] = common.HexToAddress(token.Address)
		decimals[i] = token.Decimals
	}
	multipliers, err := stableswap.PrecisionMultipliers(addresses, decimals)
	if err != nil {
		return nil, err
	}
	return decimalStrings(multipliers), nil
}

func decimalStrings(values []*uint256.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Dec()
	}
	return out
}
