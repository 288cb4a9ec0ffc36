package commands

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/printers"
	"tableflip.dev/anispin/pkg/wheel"
)

func addSpin(topLevel *cobra.Command) {
	lo := &options.LibraryOptions{}
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}
	var (
		ids     []int
		instant bool
	)

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "pick a random title from the filtered list",
		Long: `Spin puts every title that passes the filter on the wheel, or only the
titles named with --id, and spins it. On a terminal the wheel ticks through
titles as it slows down; otherwise the winner is printed straight away.`,
		Example: `
anispin spin
anispin spin --genre romance --format movie
anispin spin --id 101,204,377 --instant
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := openFiltered(cmd, lo, fo)
			if err != nil {
				return oo.HandleError(err)
			}
			if err := selectForSpin(svc, ids); err != nil {
				return oo.HandleError(err)
			}
			items := svc.SyncWheel()
			if len(items) == 0 {
				return oo.HandleError(fmt.Errorf("nothing to spin: %w", wheel.ErrNoCandidates))
			}

			pp := printers.PrettyPrint{ShowID: io.ShowID, Prefs: svc.Preferences()}
			var res app.SpinResult
			if instant || oo.JSON || !isatty.IsTerminal(os.Stdout.Fd()) {
				res, err = svc.SpinNow()
			} else {
				res, err = svc.Spin(cmd.Context(), func(f wheel.Frame[media.Record]) {
					pp.Tick(f, items)
				})
			}
			if err != nil {
				return oo.HandleError(err)
			}

			if oo.JSON {
				b, err := json.Marshal(res)
				if err != nil {
					return oo.HandleError(err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			pp.Winner(res)
			return nil
		},
	}

	options.AddLibraryArgs(cmd, lo)
	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	cmd.Flags().IntSliceVar(&ids, "id", nil,
		"Spin only these titles. Each must pass the filter.")
	cmd.Flags().BoolVar(&instant, "instant", false,
		"Skip the animation.")

	topLevel.AddCommand(cmd)
}

// selectForSpin selects ids, or every visible title when ids is empty.
// Repeated ids are selected once.
func selectForSpin(svc *app.Service, ids []int) error {
	if len(ids) == 0 {
		svc.SelectVisible()
		return nil
	}
	for _, id := range ids {
		if svc.IsSelected(id) {
			continue
		}
		if _, err := svc.ToggleSelection(id); err != nil {
			return fmt.Errorf("title %d: %w", id, err)
		}
	}
	return nil
}
