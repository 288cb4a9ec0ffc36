package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/logging"
	"tableflip.dev/anispin/pkg/store"
)

// LogOptions
type LogOptions struct {
	Level  string
	Format string
	Caller bool
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level: trace, debug, info, warn, error or disabled.")
	cmd.PersistentFlags().StringVar(&o.Format, "log-format", "",
		"Log format: console or json.")
	cmd.PersistentFlags().BoolVar(&o.Caller, "log-caller", false,
		"Include the caller in log lines.")
}

// Config merges the flags over the configured log settings. Flags win.
func (o *LogOptions) Config(cfg store.LogConfig) logging.Config {
	out := logging.DefaultConfig()
	if cfg.Level != "" {
		out.Level = cfg.Level
	}
	if cfg.Format != "" {
		out.Format = cfg.Format
	}
	if o.Level != "" {
		out.Level = o.Level
	}
	if o.Format != "" {
		out.Format = o.Format
	}
	out.Caller = o.Caller
	return out
}
