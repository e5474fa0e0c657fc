package tracker

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange splits a block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// Samples returns the blocks From, From+step, ... that fall inside r.
func (r BlockRange) Samples(step uint64) []uint64 {
	if step == 0 {
		step = 1
	}
	out := make([]uint64, 0, (r.To-r.From)/step+1)
	for b := r.From; b <= r.To; b += step {
		out = append(out, b)
		if r.To-b < step {
			break
		}
	}
	return out
}
