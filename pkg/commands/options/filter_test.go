package options

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
)

func filterCommand(t *testing.T, args ...string) (*cobra.Command, *FilterOptions) {
	t.Helper()
	fo := &FilterOptions{}
	cmd := &cobra.Command{Use: "test"}
	AddFilterArgs(cmd, fo)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, fo
}

func reduceAll(actions []filter.Action) filter.Params {
	p := filter.DefaultParams()
	for _, a := range actions {
		p = filter.Reduce(p, a)
	}
	return p
}

func TestFilterActionsOnlyForChangedFlags(t *testing.T) {
	cmd, fo := filterCommand(t)
	actions, err := fo.Actions(cmd)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestFilterActionsApplyFlags(t *testing.T) {
	cmd, fo := filterCommand(t,
		"--search", "frieren",
		"--genre", "Adventure,Drama",
		"--format", "tv,movie",
		"--min-score", "7",
		"--dropped",
		"--planning=false",
		"--sort", "title",
		"--order", "asc",
		"--reverse",
	)
	actions, err := fo.Actions(cmd)
	require.NoError(t, err)

	p := reduceAll(actions)
	assert.Equal(t, "frieren", p.Filter.Search)
	assert.Equal(t, []string{"Adventure", "Drama"}, p.Filter.Genres)
	assert.Equal(t, []media.Format{media.FormatTV, media.FormatMovie}, p.Filter.Formats)
	assert.Equal(t, filter.ScoreRange{From: 7, To: 10}, p.Filter.Score)
	assert.True(t, p.Filter.ShowDropped)
	assert.False(t, p.Filter.ShowPlanning)
	assert.Equal(t, filter.Sort{Field: filter.SortTitle, Order: filter.Descending}, p.Sort)
}

func TestFilterActionsRejectUnknownValues(t *testing.T) {
	cmd, fo := filterCommand(t, "--format", "radio")
	_, err := fo.Actions(cmd)
	assert.Error(t, err)

	cmd, fo = filterCommand(t, "--sort", "popularity")
	_, err = fo.Actions(cmd)
	assert.Error(t, err)
}

func TestLibraryRef(t *testing.T) {
	def := store.Ref{Provider: media.ProviderAniList, User: "yui"}

	ref, err := (&LibraryOptions{}).Ref(def)
	require.NoError(t, err)
	assert.Equal(t, def, ref)

	ref, err = (&LibraryOptions{Provider: "mal", User: "mio"}).Ref(def)
	require.NoError(t, err)
	assert.Equal(t, store.Ref{Provider: media.ProviderMyAnimeList, User: "mio"}, ref)

	_, err = (&LibraryOptions{Provider: "kitsu"}).Ref(def)
	assert.Error(t, err)
}

func TestLogConfigFlagsWin(t *testing.T) {
	o := &LogOptions{Level: "debug"}
	cfg := o.Config(store.LogConfig{Level: "warn", Format: "json"})
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestFilterHelpDescribesConjunctiveLists(t *testing.T) {
	cmd, _ := filterCommand(t)
	assert.Contains(t, cmd.Flags().Lookup("list").Usage, "every one of these custom lists")
	assert.Contains(t, cmd.Flags().Lookup("genre").Usage, "every one of these genres")
}
