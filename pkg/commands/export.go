package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/commands/options"
)

func addExport(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	fo := &options.FilterOptions{}
	var (
		library bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "write the filtered list as JSON",
		Long: `Export writes the titles that pass the filter, with the filter that
produced them, as JSON. With --library the whole stored snapshot is written
in the form import reads back.`,
		Example: `
anispin export --genre drama > drama.json
anispin export --library -o backup.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openFiltered(cmd, lo, fo)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if library {
				return svc.ExportLibrary(w)
			}
			return svc.Export(w)
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddFilterArgs(cmd, fo)
	cmd.Flags().BoolVar(&library, "library", false,
		"Write the whole snapshot instead of the filtered list.")
	cmd.Flags().StringVarP(&outFile, "output", "o", "",
		"Write to this file instead of standard output.")

	topLevel.AddCommand(cmd)
}
