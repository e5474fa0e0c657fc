package quote

import (
	"context"
	"fmt"
	"time"

	"stableScope/internal/chain"
)

// Clock supplies the reference time, in unix seconds, used for the
// amplification ramp.
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// FixedClock always reports the same instant.
type FixedClock uint64

func (c FixedClock) Now(context.Context) (uint64, error) {
	return uint64(c), nil
}

// SystemClock reports the local wall clock.
type SystemClock struct{}

func (SystemClock) Now(context.Context) (uint64, error) {
	return uint64(time.Now().Unix()), nil
}

// ClockFunc adapts a function to Clock.
type ClockFunc func(ctx context.Context) (uint64, error)

func (f ClockFunc) Now(ctx context.Context) (uint64, error) {
	return f(ctx)
}

// LatestBlockClock reports the timestamp of the chain head at call time.
func LatestBlockClock(client *chain.Client) Clock {
	return ClockFunc(func(ctx context.Context) (uint64, error) {
		header, err := client.HeaderByNumber(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("latest header: %w", err)
		}
		return header.Time, nil
	})
}
