package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/commands/options"
	"tableflip.dev/anispin/pkg/store"
)

// newService builds an application service over the configured store
// without loading a library.
func newService() (*app.Service, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(p, cfg), nil
}

// openService loads the library named by the flags, falling back to the
// configured one.
func openService(ctx context.Context, lib *options.LibraryOptions) (*app.Service, error) {
	svc, err := newService()
	if err != nil {
		return nil, err
	}
	ref, err := lib.Ref(svc.DefaultRef())
	if err != nil {
		return nil, err
	}
	if _, err := svc.Open(ctx, ref); err != nil {
		if errors.Is(err, store.ErrLibraryNotFound) {
			return nil, fmt.Errorf("no library stored for %s, run `anispin import` first: %w", ref, err)
		}
		return nil, err
	}
	return svc, nil
}

// openFiltered is openService followed by the filter flags that were set.
func openFiltered(cmd *cobra.Command, lib *options.LibraryOptions, fo *options.FilterOptions) (*app.Service, error) {
	actions, err := fo.Actions(cmd)
	if err != nil {
		return nil, err
	}
	svc, err := openService(cmd.Context(), lib)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if err := svc.Dispatch(a); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func libraryCompletions(cmd *cobra.Command) []string {
	svc, err := newService()
	if err != nil {
		return nil
	}
	refs, err := svc.Libraries(cmd.Context())
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.User != "" {
			out = append(out, ref.User)
		}
	}
	return out
}
