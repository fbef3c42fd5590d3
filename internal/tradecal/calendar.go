package tradecal

import (
	"errors"
	"sort"
	"time"
)

// ErrDateNotFound is returned by the navigation operations when the
// requested step lands outside the known calendar window. Callers must treat
// it as "no authoritative date available", not substitute a default.
var ErrDateNotFound = errors.New("tradecal: date outside known calendar window")

// Calendar is an immutable snapshot of known trading dates. Once built it is
// never mutated; the Store swaps whole snapshots on refresh.
type Calendar struct {
	dates []Date // ascending, unique
	set   map[Date]struct{}

	// FetchedAt is when the snapshot was obtained from the provider or cache.
	FetchedAt time.Time

	// Degraded is true when the snapshot was synthesized from weekdays
	// because the provider was unavailable.
	Degraded bool
}

// NewCalendar builds a Calendar from the given dates, sorting and removing
// duplicates.
func NewCalendar(dates []Date, fetchedAt time.Time, degraded bool) *Calendar {
	set := make(map[Date]struct{}, len(dates))
	uniq := make([]Date, 0, len(dates))
	for _, d := range dates {
		if _, ok := set[d]; ok {
			continue
		}
		set[d] = struct{}{}
		uniq = append(uniq, d)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	return &Calendar{
		dates:     uniq,
		set:       set,
		FetchedAt: fetchedAt,
		Degraded:  degraded,
	}
}

// Len returns the number of trading dates in the calendar.
func (c *Calendar) Len() int { return len(c.dates) }

// Dates returns a copy of the ordered trading dates.
func (c *Calendar) Dates() []Date {
	out := make([]Date, len(c.dates))
	copy(out, c.dates)
	return out
}

// IsTradingDate reports whether d is a known trading date.
func (c *Calendar) IsTradingDate(d Date) bool {
	_, ok := c.set[d]
	return ok
}

// nearestIndex returns the index of d if present, otherwise the index of the
// smallest trading date >= d, clamped into [0, len-1]. Navigation from a
// non-trading date therefore snaps forward first and steps from there.
func (c *Calendar) nearestIndex(d Date) int {
	i := sort.Search(len(c.dates), func(i int) bool { return c.dates[i] >= d })
	if i >= len(c.dates) {
		i = len(c.dates) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// PreviousTradingDate returns the nth trading date before d. When d is not
// itself a trading date it is first snapped to the nearest trading date at or
// after d. Returns ErrDateNotFound when the step leaves the calendar window.
func (c *Calendar) PreviousTradingDate(d Date, n int) (Date, error) {
	if len(c.dates) == 0 {
		return "", ErrDateNotFound
	}
	i := c.nearestIndex(d) - n
	if i < 0 {
		return "", ErrDateNotFound
	}
	return c.dates[i], nil
}

// NextTradingDate returns the nth trading date after d, with the same
// snapping behaviour as PreviousTradingDate.
func (c *Calendar) NextTradingDate(d Date, n int) (Date, error) {
	if len(c.dates) == 0 {
		return "", ErrDateNotFound
	}
	i := c.nearestIndex(d) + n
	if i >= len(c.dates) {
		return "", ErrDateNotFound
	}
	return c.dates[i], nil
}

// TradingDateOnOrBefore returns the most recent trading date that is <= d.
// Unlike PreviousTradingDate it never snaps forward, so a weekend past the
// end of the calendar still resolves to the last known trading date.
func (c *Calendar) TradingDateOnOrBefore(d Date) (Date, error) {
	i := sort.Search(len(c.dates), func(i int) bool { return c.dates[i] > d })
	if i == 0 {
		return "", ErrDateNotFound
	}
	return c.dates[i-1], nil
}

// LastTradingDate returns the nth most recent trading date in the calendar;
// n=1 is the latest.
func (c *Calendar) LastTradingDate(n int) (Date, error) {
	if n < 1 || n > len(c.dates) {
		return "", ErrDateNotFound
	}
	return c.dates[len(c.dates)-n], nil
}

// Calendar returns the snapshot itself, letting a bare *Calendar satisfy
// CalendarSource in tests and one-shot callers.
func (c *Calendar) Calendar() *Calendar { return c }

// CalendarSource supplies the current calendar snapshot. The Store implements
// it with an atomically swapped snapshot; a *Calendar implements it directly.
type CalendarSource interface {
	Calendar() *Calendar
}
