package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/printers"
)

func addImport(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "store a list snapshot",
		Long: `Import reads a list snapshot and stores it for the other commands.

The file may be an anispin library export, a JSON array of titles or an
AniList MediaListCollection response. Use - to read standard input.`,
		Example: `
anispin import planning.json --user yui
anispin import - --provider mal < list.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			ref, err := lo.Ref(svc.DefaultRef())
			if err != nil {
				return oo.HandleError(err)
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return oo.HandleError(err)
				}
				defer f.Close()
				r = f
			}

			lib, err := svc.Import(cmd.Context(), r, ref)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				return oo.HandleError(svc.Export(cmd.OutOrStdout()))
			}
			pp := printers.PrettyPrint{Prefs: svc.Preferences()}
			pp.TitleWithCount("Imported "+lib.Ref().String(), len(svc.View().Visible), len(lib.Records))
			return nil
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
