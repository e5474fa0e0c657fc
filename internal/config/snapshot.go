package config

import "github.com/spf13/pflag"

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	Common
	Out   string
	Print bool
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out": "./data/snapshot.json",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	return SnapshotConfig{
		Common: loadCommon(v),
		Out:    v.GetString("out"),
		Print:  v.GetBool("print"),
	}, nil
}
