package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/anispin/pkg/logging"
	"tableflip.dev/anispin/pkg/media"
)

// ErrLibraryNotFound is returned when no snapshot exists for a provider/user.
var ErrLibraryNotFound = errors.New("store: library not found")

// Library is one imported list snapshot.
type Library struct {
	Provider  media.Provider `json:"provider"`
	User      string         `json:"user"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Records   []media.Record `json:"records"`
}

// Ref names a stored library without loading it.
type Ref struct {
	Provider media.Provider `json:"provider"`
	User     string         `json:"user"`
}

func (r Ref) String() string {
	if r.User == "" {
		return string(r.Provider)
	}
	return string(r.Provider) + "/" + r.User
}

// Ref returns the identity of l.
func (l *Library) Ref() Ref {
	return Ref{Provider: l.Provider, User: l.User}
}

// Persistence defines the persistence contract for library snapshots.
type Persistence interface {
	Save(l *Library) error
	Load(ctx context.Context, ref Ref) (*Library, error)
	List(ctx context.Context) []Ref
	Delete(ref Ref) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      8 * 1024 * 1024,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

const libraryFile = "library"

func (p *persistence) Save(l *Library) error {
	if l == nil {
		return errors.New("store: nil library")
	}
	if _, err := media.ParseProvider(string(l.Provider)); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	if l.FetchedAt.IsZero() {
		l.FetchedAt = time.Now().UTC()
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("store: encode library: %w", err)
	}
	if err := p.d.Write(toKey(l.Ref()), data); err != nil {
		return fmt.Errorf("store: write library: %w", err)
	}
	logging.Debug().Str("library", l.Ref().String()).Int("records", len(l.Records)).Msg("library saved")
	return nil
}

func (p *persistence) Load(_ context.Context, ref Ref) (*Library, error) {
	key := toKey(ref)
	if !p.d.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, ref)
	}
	val, err := p.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("store: read library: %w", err)
	}
	l := &Library{}
	if err := json.Unmarshal(val, l); err != nil {
		return nil, fmt.Errorf("store: decode library %s: %w", ref, err)
	}
	// The key is authoritative over whatever the body claims.
	l.Provider, l.User = ref.Provider, ref.User
	logging.Debug().Str("library", ref.String()).Int("records", len(l.Records)).Msg("library loaded")
	return l, nil
}

func (p *persistence) List(ctx context.Context) []Ref {
	all := make([]Ref, 0)
	for key := range p.d.Keys(ctx.Done()) {
		ref, ok := fromKey(key)
		if !ok {
			continue
		}
		all = append(all, ref)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Provider != all[j].Provider {
			return all[i].Provider < all[j].Provider
		}
		return all[i].User < all[j].User
	})
	return all
}

func (p *persistence) Delete(ref Ref) error {
	key := toKey(ref)
	if !p.d.Has(key) {
		return fmt.Errorf("%w: %s", ErrLibraryNotFound, ref)
	}
	return p.d.Erase(key)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `provider-u<hex user>-library`.
func toKey(ref Ref) string {
	return fmt.Sprintf("%s-%s-%s", ref.Provider, toUser(ref.User), libraryFile)
}

func fromKey(key string) (Ref, bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 || parts[2] != libraryFile {
		return Ref{}, false
	}
	provider, err := media.ParseProvider(parts[0])
	if err != nil {
		return Ref{}, false
	}
	user, err := fromUser(parts[1])
	if err != nil {
		logging.Warn().Str("key", key).Err(err).Msg("skipping malformed library key")
		return Ref{}, false
	}
	return Ref{Provider: provider, User: user}, true
}

// User names are free text; hex keeps them safe as a path segment and the
// prefix keeps the empty user from producing an empty one.
func toUser(s string) string {
	return "u" + hex.EncodeToString([]byte(s))
}

func fromUser(s string) (string, error) {
	if !strings.HasPrefix(s, "u") {
		return "", fmt.Errorf("store: malformed user segment %q", s)
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return "", fmt.Errorf("store: malformed user segment %q: %w", s, err)
	}
	return string(b), nil
}
