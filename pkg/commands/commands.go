package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/logging"
	"tableflip.dev/anispin/pkg/store"
)

var (
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "anispin",
		Short: base.Wrap80("Filter your planned anime and let a wheel pick the next one."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				logging.Init(lo.Config(store.LogConfig{}))
				return err
			}
			logging.Init(lo.Config(cfg.Log()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddLogArgs(cmd, lo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addImport(topLevel)
	addList(topLevel)
	addSpin(topLevel)
	addExport(topLevel)
	addReport(topLevel)
	addLibraries(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
