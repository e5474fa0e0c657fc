package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRange(t *testing.T) {
	got, err := SplitRange(100, 105, 2)
	require.NoError(t, err)

	want := []BlockRange{
		{From: 100, To: 101},
		{From: 102, To: 103},
		{From: 104, To: 105},
	}
	assert.Equal(t, want, got)
}

func TestSplitRangeSingle(t *testing.T) {
	got, err := SplitRange(5, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []BlockRange{{From: 5, To: 5}}, got)
}

func TestSplitRangeInvalid(t *testing.T) {
	_, err := SplitRange(10, 9, 1)
	assert.Error(t, err, "invalid range")
	_, err = SplitRange(1, 10, 0)
	assert.Error(t, err, "zero batch size")
}

func TestBlockRangeSamples(t *testing.T) {
	tests := []struct {
		name string
		r    BlockRange
		step uint64
		want []uint64
	}{
		{"aligned end", BlockRange{From: 100, To: 110}, 5, []uint64{100, 105, 110}},
		{"unaligned end", BlockRange{From: 100, To: 109}, 5, []uint64{100, 105}},
		{"single block", BlockRange{From: 7, To: 7}, 0, []uint64{7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.r.Samples(tc.step))
		})
	}
}

func TestSamplesNearMaxBlock(t *testing.T) {
	top := ^uint64(0)
	got := BlockRange{From: top - 3, To: top}.Samples(2)
	assert.Equal(t, []uint64{top - 3, top - 1}, got)
}
