package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/printers"
)

func addList(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list the titles that pass the filter",
		Example: `
anispin list
anispin list --genre action,comedy --min-score 7
anispin list --dropped --paused --sort title --order asc
anispin list --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openFiltered(cmd, lo, fo)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.HandleError(svc.Export(cmd.OutOrStdout()))
			}

			lib, err := svc.Library()
			if err != nil {
				return err
			}
			v := svc.View()
			pp := printers.PrettyPrint{ShowID: io.ShowID, Prefs: svc.Preferences()}
			pp.TitleWithCount(lib.Ref().String(), len(v.Visible), v.Total)
			pp.Records(v.Visible...)
			return nil
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	_ = cmd.RegisterFlagCompletionFunc("user", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return libraryCompletions(cmd), cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}
