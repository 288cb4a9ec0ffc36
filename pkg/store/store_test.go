package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"

	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/wheel"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string               { return t.path }
func (t testConfig) Provider() media.Provider       { return media.ProviderAniList }
func (t testConfig) User() string                   { return "" }
func (t testConfig) Preferences() media.Preferences { return media.DefaultPreferences() }
func (t testConfig) Collation() language.Tag        { return language.English }
func (t testConfig) Spin() SpinConfig               { return SpinConfig{} }
func (t testConfig) Log() LogConfig                 { return LogConfig{} }

func TestSaveLoadRoundTrip(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	score := 82.0
	lib := &Library{
		Provider: media.ProviderAniList,
		User:     "some-user/with odd chars",
		Records: []media.Record{{
			ID:           21,
			Title:        media.Title{Romaji: "One Piece"},
			AverageScore: &score,
			Status:       media.StatusPlanning,
		}},
	}
	if err := p.Save(lib); err != nil {
		t.Fatalf("save: %v", err)
	}
	if lib.FetchedAt.IsZero() {
		t.Fatal("expected FetchedAt to be stamped")
	}

	got, err := p.Load(context.Background(), lib.Ref())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].ID != 21 {
		t.Fatalf("unexpected records %+v", got.Records)
	}
	if got.Records[0].Score() != 82 {
		t.Fatalf("score lost: %v", got.Records[0].Score())
	}
	if got.User != lib.User {
		t.Fatalf("user = %q, want %q", got.User, lib.User)
	}
}

func TestLoadMissing(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	_, err = p.Load(context.Background(), Ref{Provider: media.ProviderMyAnimeList, User: "nobody"})
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound, got %v", err)
	}
	if err := p.Delete(Ref{Provider: media.ProviderAniList}); !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound on delete, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	refs := []Ref{
		{Provider: media.ProviderMyAnimeList, User: "b"},
		{Provider: media.ProviderAniList, User: ""},
		{Provider: media.ProviderAniList, User: "a"},
	}
	for _, ref := range refs {
		if err := p.Save(&Library{Provider: ref.Provider, User: ref.User}); err != nil {
			t.Fatalf("save %v: %v", ref, err)
		}
	}

	got := p.List(context.Background())
	want := []Ref{refs[1], refs[2], refs[0]}
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("list[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if err := p.Delete(refs[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := len(p.List(context.Background())); n != 2 {
		t.Fatalf("expected 2 libraries after delete, got %d", n)
	}
}

func TestSaveRejectsUnknownProvider(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	if err := p.Save(&Library{Provider: "kitsu"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	ref := Ref{Provider: media.ProviderAniList, User: "x-y-z"}
	got, ok := fromKey(toKey(ref))
	if !ok || got != ref {
		t.Fatalf("fromKey(toKey(%v)) = %v, %v", ref, got, ok)
	}
	if _, ok := fromKey("anilist-zzz-library"); ok {
		t.Fatal("expected malformed user segment to be rejected")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	body := "path: " + db + "\nprovider: mal\nuser: yui\ntitle_language: romaji\nspin:\n  duration: 2s\n"
	if err := os.WriteFile(filepath.Join(dir, ".anispin.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANISPIN_CONFIG_PATH", dir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BasePath() != db {
		t.Errorf("path = %q, want %q", cfg.BasePath(), db)
	}
	if cfg.Provider() != media.ProviderMyAnimeList {
		t.Errorf("provider = %q", cfg.Provider())
	}
	if cfg.User() != "yui" {
		t.Errorf("user = %q", cfg.User())
	}
	if cfg.Preferences().TitleLanguage != media.TitleRomaji {
		t.Errorf("title language = %q", cfg.Preferences().TitleLanguage)
	}
	if cfg.Spin().Duration != 2*time.Second {
		t.Errorf("spin duration = %v", cfg.Spin().Duration)
	}
	if cfg.Spin().TickCooldown != wheel.DefaultTickCooldown {
		t.Errorf("tick cooldown = %v", cfg.Spin().TickCooldown)
	}
	if cfg.Log().Format != "console" {
		t.Errorf("log format = %q", cfg.Log().Format)
	}
}

func TestLoadConfigNestedKeysFromEnv(t *testing.T) {
	t.Setenv("ANISPIN_CONFIG_PATH", t.TempDir())
	t.Setenv("ANISPIN_SPIN_DURATION", "3s")
	t.Setenv("ANISPIN_SPIN_TICK_COOLDOWN", "20ms")
	t.Setenv("ANISPIN_LOG_LEVEL", "debug")
	t.Setenv("ANISPIN_USER", "mio")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Spin().Duration != 3*time.Second {
		t.Errorf("spin duration = %v", cfg.Spin().Duration)
	}
	if cfg.Spin().TickCooldown != 20*time.Millisecond {
		t.Errorf("tick cooldown = %v", cfg.Spin().TickCooldown)
	}
	if cfg.Log().Level != "debug" {
		t.Errorf("log level = %q", cfg.Log().Level)
	}
	if cfg.User() != "mio" {
		t.Errorf("user = %q", cfg.User())
	}
}
