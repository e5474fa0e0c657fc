package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Common
	Snapshot    string
	From        int
	To          int
	Amount      string
	AmountHuman string
	Now         string
	Output      string
	Verify      bool
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"output": "table",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Common:      loadCommon(v),
		Snapshot:    v.GetString("snapshot"),
		From:        v.GetInt("from"),
		To:          v.GetInt("to"),
		Amount:      v.GetString("amount"),
		AmountHuman: v.GetString("amount-human"),
		Now:         v.GetString("now"),
		Output:      strings.ToLower(v.GetString("output")),
		Verify:      v.GetBool("verify"),
	}

	if cfg.Output != "table" && cfg.Output != "json" {
		return QuoteConfig{}, fmt.Errorf("unsupported output %q (want table or json)", cfg.Output)
	}
	if cfg.Amount != "" && cfg.AmountHuman != "" {
		return QuoteConfig{}, fmt.Errorf("amount and amount-human are mutually exclusive")
	}
	// the pool contract always quotes at the block timestamp
	if cfg.Verify && cfg.Now != "" {
		return QuoteConfig{}, fmt.Errorf("verify cannot be combined with now %q", cfg.Now)
	}

	return cfg, nil
}
