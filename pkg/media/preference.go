package media

import (
	"fmt"
	"sort"
	"strings"
)

// TitleLanguage selects which title variant is preferred for display.
type TitleLanguage string

const (
	TitleEnglish TitleLanguage = "english"
	TitleRomaji  TitleLanguage = "romaji"
	TitleNative  TitleLanguage = "native"
)

// UnknownTitle is shown when a record has no usable name variant.
const UnknownTitle = "Unknown Title"

// ParseTitleLanguage validates a title language name. Empty input selects English.
func ParseTitleLanguage(raw string) (TitleLanguage, error) {
	switch l := TitleLanguage(strings.ToLower(strings.TrimSpace(raw))); l {
	case "":
		return TitleEnglish, nil
	case TitleEnglish, TitleRomaji, TitleNative:
		return l, nil
	default:
		return TitleEnglish, fmt.Errorf("media: unknown title language %q", raw)
	}
}

// ImageQuality selects which cover size is preferred.
type ImageQuality string

const (
	ImageExtraLarge ImageQuality = "extraLarge"
	ImageLarge      ImageQuality = "large"
	ImageMedium     ImageQuality = "medium"
)

// ParseImageQuality validates a cover size name. Empty input selects large.
func ParseImageQuality(raw string) (ImageQuality, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ImageLarge, nil
	case "extralarge", "extra_large", "xl":
		return ImageExtraLarge, nil
	case "large":
		return ImageLarge, nil
	case "medium":
		return ImageMedium, nil
	default:
		return ImageLarge, fmt.Errorf("media: unknown image quality %q", raw)
	}
}

// Preferences are the display choices threaded into title and image
// resolution. They are always passed explicitly.
type Preferences struct {
	TitleLanguage TitleLanguage
	ImageQuality  ImageQuality
}

// DefaultPreferences returns English titles and large covers.
func DefaultPreferences() Preferences {
	return Preferences{TitleLanguage: TitleEnglish, ImageQuality: ImageLarge}
}

// TitleWithPreference resolves the display title: the preferred variant if
// non-empty, else romaji, else native, else UnknownTitle.
func TitleWithPreference(t Title, lang TitleLanguage) string {
	var preferred string
	switch lang {
	case TitleRomaji:
		preferred = t.Romaji
	case TitleNative:
		preferred = t.Native
	default:
		preferred = t.English
	}
	for _, v := range []string{preferred, t.Romaji, t.Native} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return UnknownTitle
}

// DisplayTitle is TitleWithPreference for the record.
func (r *Record) DisplayTitle(lang TitleLanguage) string {
	return TitleWithPreference(r.Title, lang)
}

// ImageURLWithPreference returns the preferred cover URL, falling back to
// the next larger then next smaller size that is present.
func ImageURLWithPreference(c CoverImage, q ImageQuality) string {
	var order []string
	switch q {
	case ImageExtraLarge:
		order = []string{c.ExtraLarge, c.Large, c.Medium}
	case ImageMedium:
		order = []string{c.Medium, c.Large, c.ExtraLarge}
	default:
		order = []string{c.Large, c.ExtraLarge, c.Medium}
	}
	for _, u := range order {
		if u != "" {
			return u
		}
	}
	return ""
}

// Genres returns the sorted set of genres across records.
func Genres(records []Record) []string {
	set := make(map[string]struct{})
	for i := range records {
		for _, g := range records[i].Genres {
			if g = strings.TrimSpace(g); g != "" {
				set[g] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// CustomLists returns the sorted set of custom list names across records.
func CustomLists(records []Record) []string {
	set := make(map[string]struct{})
	for i := range records {
		for _, l := range records[i].CustomLists {
			if l = strings.TrimSpace(l); l != "" {
				set[l] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// Formats returns the known formats present in records, in AllFormats order.
func Formats(records []Record) []Format {
	present := make(map[Format]bool)
	for i := range records {
		present[records[i].Format] = true
	}
	out := make([]Format, 0, len(present))
	for _, f := range AllFormats() {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
