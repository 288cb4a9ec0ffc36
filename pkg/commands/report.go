package commands

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/printers"
)

func addReport(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	fo := &options.FilterOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"info"},
		Short:   "summarise a stored library",
		Long: `Report counts the titles of a library by status, format and genre, and
shows how many pass the filter and how much watch time they add up to.`,
		Example: `
anispin report
anispin report --user yui --dropped
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openFiltered(cmd, lo, fo)
			if err != nil {
				return oo.HandleError(err)
			}
			res, err := svc.Report()
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				b, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return oo.HandleError(err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			pp := printers.PrettyPrint{Prefs: svc.Preferences()}
			pp.Report(res)
			return nil
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddFilterArgs(cmd, fo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addLibraries(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "list stored library snapshots",
		Example: `
anispin libraries
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			refs, err := svc.Libraries(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				b, err := json.Marshal(refs)
				if err != nil {
					return oo.HandleError(err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			pp := printers.PrettyPrint{}
			pp.Libraries(refs...)
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
