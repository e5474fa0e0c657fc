package config

import (
	"time"

	"github.com/spf13/pflag"
)

// TrackConfig holds configuration for the track command.
type TrackConfig struct {
	Common
	FromBlock         uint64
	ToBlock           uint64
	Step              uint64
	BatchSize         uint64
	Requests          []string
	Out               string
	Errors            string
	Checkpoint        string
	CheckpointEnabled bool
	StoreSnapshots    bool
	MaxRetries        int
	RetryBackoff      time.Duration
	MetricsAddr       string
}

// LoadTrack merges config file, environment variables, and flags into TrackConfig.
func LoadTrack(cfgFile string, flags *pflag.FlagSet) (TrackConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"step":               uint64(1),
		"batch-size":         uint64(100),
		"out":                "./data/quotes.jsonl",
		"errors":             "./data/quote_errors.jsonl",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
	})
	if err != nil {
		return TrackConfig{}, err
	}

	return TrackConfig{
		Common:            loadCommon(v),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Step:              v.GetUint64("step"),
		BatchSize:         v.GetUint64("batch-size"),
		Requests:          getStringSlice(v, "request"),
		Out:               v.GetString("out"),
		Errors:            v.GetString("errors"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		StoreSnapshots:    v.GetBool("store-snapshots"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		MetricsAddr:       v.GetString("metrics-addr"),
	}, nil
}
