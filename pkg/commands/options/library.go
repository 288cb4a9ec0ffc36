package options

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
)

// LibraryOptions pick which stored snapshot a command works on.
type LibraryOptions struct {
	Provider string
	User     string
}

func AddLibraryArgs(cmd *cobra.Command, o *LibraryOptions) {
	cmd.Flags().StringVar(&o.Provider, "provider", "",
		"List provider: anilist or mal. Defaults to the configured provider.")
	cmd.Flags().StringVarP(&o.User, "user", "u", "",
		"List owner. Defaults to the configured user.")
}

// Ref resolves the flags against def, the configured library.
func (o *LibraryOptions) Ref(def store.Ref) (store.Ref, error) {
	ref := def
	if p := strings.TrimSpace(o.Provider); p != "" {
		provider, err := media.ParseProvider(p)
		if err != nil {
			return store.Ref{}, err
		}
		ref.Provider = provider
	}
	if u := strings.TrimSpace(o.User); u != "" {
		ref.User = u
	}
	return ref, nil
}
