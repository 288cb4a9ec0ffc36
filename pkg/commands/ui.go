package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/commands/options"
	teaui "tableflip.dev/anispin/pkg/tui/app"
)

func addUI(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	fo := &options.FilterOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Long: `Open the terminal UI. Filter the list, pick titles with space and press s
to spin the wheel. Press ? inside the UI for every key.`,
		Example: `
anispin ui
anispin ui --user yui --dropped
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openFiltered(cmd, lo, fo)
			if err != nil {
				return err
			}
			return teaui.Run(cmd.Context(), svc)
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddFilterArgs(cmd, fo)
	_ = cmd.RegisterFlagCompletionFunc("user", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return libraryCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}
