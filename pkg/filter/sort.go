package filter

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"

	"tableflip.dev/anispin/pkg/media"
)

// Comparator orders two records; negative means a sorts before b.
type Comparator func(a, b *media.Record) int

// NewComparator builds the comparator for s. Title comparison collates on
// the preferred title in env's locale.
func NewComparator(s Sort, env Env) Comparator {
	sign := s.Order.sign()
	switch s.Field {
	case SortTitle:
		col := collate.New(env.Collation, collate.IgnoreCase)
		lang := env.Preferences.TitleLanguage
		return func(a, b *media.Record) int {
			return sign * col.CompareString(a.DisplayTitle(lang), b.DisplayTitle(lang))
		}
	case SortScore:
		return func(a, b *media.Record) int {
			return sign * cmp.Compare(a.Score(), b.Score())
		}
	default:
		return func(a, b *media.Record) int {
			return compareDate(a.Created(), b.Created(), sign)
		}
	}
}

// compareDate orders by list-added time. Equal timestamps report 1 in either
// direction, so a tie always claims the left operand is greater.
func compareDate(a, b int64, sign int) int {
	if a == b {
		return 1
	}
	return sign * cmp.Compare(a, b)
}

// SortRecords sorts records in place with a stable sort.
func SortRecords(records []media.Record, s Sort, env Env) {
	compare := NewComparator(s, env)
	slices.SortStableFunc(records, func(a, b media.Record) int {
		return compare(&a, &b)
	})
}
