package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/wheel"
)

// Config is what the rest of anispin needs to know about its settings.
type Config interface {
	BasePath() string
	Provider() media.Provider
	User() string
	Preferences() media.Preferences
	Collation() language.Tag
	Spin() SpinConfig
	Log() LogConfig
}

// SpinConfig tunes the wheel animation.
type SpinConfig struct {
	Duration     time.Duration
	TickCooldown time.Duration
	IdleStep     float64
}

// LogConfig feeds logging.Init.
type LogConfig struct {
	Level  string
	Format string
}

// Options turns the spin settings into wheel options.
func (s SpinConfig) Options() []wheel.Option {
	return []wheel.Option{
		wheel.WithDuration(s.Duration),
		wheel.WithTickCooldown(s.TickCooldown),
		wheel.WithIdleStep(s.IdleStep),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.anispin.db")
	v.SetDefault("provider", string(media.ProviderAniList))
	v.SetDefault("user", "")
	v.SetDefault("title_language", string(media.TitleEnglish))
	v.SetDefault("image_quality", string(media.ImageLarge))
	v.SetDefault("collation", "en")
	v.SetDefault("spin.duration", wheel.DefaultDuration)
	v.SetDefault("spin.tick_cooldown", wheel.DefaultTickCooldown)
	v.SetDefault("spin.idle_step", wheel.DefaultIdleStep)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads .anispin.{yaml,json,toml} from $ANISPIN_CONFIG_PATH, the
// working directory or $HOME. A missing file is fine; every key has a
// default and can be overridden with an ANISPIN_ prefixed variable.
func LoadConfig() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".anispin")
	v.SetEnvPrefix("ANISPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("ANISPIN_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	provider, err := media.ParseProvider(v.GetString("provider"))
	if err != nil {
		return nil, err
	}
	lang, err := media.ParseTitleLanguage(v.GetString("title_language"))
	if err != nil {
		return nil, err
	}
	quality, err := media.ParseImageQuality(v.GetString("image_quality"))
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(v.GetString("collation"))
	if err != nil {
		return nil, fmt.Errorf("store: collation: %w", err)
	}
	return &fileConfig{
		path:     path,
		provider: provider,
		user:     v.GetString("user"),
		prefs:    media.Preferences{TitleLanguage: lang, ImageQuality: quality},
		tag:      tag,
		spin: SpinConfig{
			Duration:     v.GetDuration("spin.duration"),
			TickCooldown: v.GetDuration("spin.tick_cooldown"),
			IdleStep:     v.GetFloat64("spin.idle_step"),
		},
		log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

type fileConfig struct {
	path     string
	provider media.Provider
	user     string
	prefs    media.Preferences
	tag      language.Tag
	spin     SpinConfig
	log      LogConfig
}

func (f *fileConfig) BasePath() string               { return f.path }
func (f *fileConfig) Provider() media.Provider       { return f.provider }
func (f *fileConfig) User() string                   { return f.user }
func (f *fileConfig) Preferences() media.Preferences { return f.prefs }
func (f *fileConfig) Collation() language.Tag        { return f.tag }
func (f *fileConfig) Spin() SpinConfig               { return f.spin }
func (f *fileConfig) Log() LogConfig                 { return f.log }
