// Package domain contains the core business entities, interfaces, and the
// pure streak/opening-rate calculations.
package domain

import (
	"fmt"
	"sort"
	"time"
)

// DayLayout is the wire and storage format for calendar days.
const DayLayout = "2006-01-02"

// DaySet is a set of calendar days in DayLayout form.
type DaySet map[string]struct{}

// NewDaySet builds a DaySet from the given days.
func NewDaySet(days ...string) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether day is in the set.
func (s DaySet) Has(day string) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days in ascending order. DayLayout sorts
// lexicographically in date order.
func (s DaySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ParseDay parses a DayLayout string in the given location.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}

// FormatDay renders t as a DayLayout string in its own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// IsSunday reports whether day falls on a Sunday in loc.
func IsSunday(day string, loc *time.Location) (bool, error) {
	t, err := ParseDay(day, loc)
	if err != nil {
		return false, err
	}
	return t.Weekday() == time.Sunday, nil
}

// EligibleDays enumerates the newsletter days a user could have read between
// anchor and asOf inclusive. Sundays are never eligible. When sent is
// non-nil, a day must additionally appear in it, meaning at least one read
// event exists for some user on that day and therefore an issue went out.
// The cardinality of the result is the opening-rate denominator.
func EligibleDays(anchor, asOf string, loc *time.Location, sent DaySet) (DaySet, error) {
	start, err := ParseDay(anchor, loc)
	if err != nil {
		return nil, err
	}
	end, err := ParseDay(asOf, loc)
	if err != nil {
		return nil, err
	}

	out := make(DaySet)
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if cur.Weekday() == time.Sunday {
			continue
		}
		day := FormatDay(cur)
		if sent != nil && !sent.Has(day) {
			continue
		}
		out[day] = struct{}{}
	}
	return out, nil
}
