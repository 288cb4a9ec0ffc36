package media

import (
	"fmt"
	"time"
)

// FuzzyDate is a partial calendar date. Year is required for the date to
// resolve; month and day default to the first when absent.
type FuzzyDate struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
	Day   *int `json:"day,omitempty"`
}

// NewFuzzyDate builds a date from year, month and day, where zero means absent.
func NewFuzzyDate(year, month, day int) *FuzzyDate {
	d := &FuzzyDate{}
	if year != 0 {
		d.Year = &year
	}
	if month != 0 {
		d.Month = &month
	}
	if day != 0 {
		d.Day = &day
	}
	return d
}

// Resolve converts the date into a UTC timestamp. It reports false when the
// year is missing or any present field is out of range.
func (d *FuzzyDate) Resolve() (time.Time, bool) {
	if d == nil || d.Year == nil || *d.Year <= 0 {
		return time.Time{}, false
	}
	month, day := 1, 1
	if d.Month != nil {
		month = *d.Month
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
	}
	if d.Day != nil {
		day = *d.Day
		if day < 1 || day > 31 {
			return time.Time{}, false
		}
	}
	t := time.Date(*d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; treat that as malformed.
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func (d *FuzzyDate) String() string {
	if d == nil || d.Year == nil {
		return "?"
	}
	switch {
	case d.Month == nil:
		return fmt.Sprintf("%04d", *d.Year)
	case d.Day == nil:
		return fmt.Sprintf("%04d-%02d", *d.Year, *d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", *d.Year, *d.Month, *d.Day)
	}
}

// Aired reports whether the record has a resolvable start date at or before now.
func (r *Record) Aired(now time.Time) bool {
	start, ok := r.StartDate.Resolve()
	if !ok {
		return false
	}
	return !start.After(now)
}
