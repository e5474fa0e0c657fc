package tracker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stableScope/internal/quote"
	"stableScope/internal/saddle"
)

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseRequests converts entries of the form from:to:amount, with amount in
// the input token's base units, into quote requests.
func ParseRequests(inputs []string) ([]quote.Request, error) {
	requests := make([]quote.Request, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		parts := strings.Split(input, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid request %q (want from:to:amount)", input)
		}
		from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid from index in %q: %w", input, err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid to index in %q: %w", input, err)
		}
		amount, err := saddle.ParseAmount(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", input, err)
		}
		requests = append(requests, quote.Request{From: from, To: to, AmountIn: amount})
	}
	return requests, nil
}
