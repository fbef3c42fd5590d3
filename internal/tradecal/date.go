// Package tradecal provides the trading calendar for the China A-share
// market: calendar loading with a durable cache and weekday fallback, date
// navigation (previous/next/last trading date), session-clock predicates
// against the fixed SSE/SZSE daily schedule, and reference-date resolution
// ("which trading day's data is authoritative right now").
package tradecal

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day in canonical "YYYYMMDD" form. The zero value is
// invalid. Dates compare chronologically with the ordinary string operators.
type Date string

const dateLayout = "20060102"

var marketLocation = loadMarketLocation()

func loadMarketLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// No tzdata on the host; the exchange has no DST so a fixed
		// offset is equivalent.
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

// MarketLocation returns the exchange timezone (Asia/Shanghai).
func MarketLocation() *time.Location { return marketLocation }

// MarketNow returns the current exchange wall-clock time. Session predicates
// and the reference-date resolver expect timestamps in this location.
func MarketNow() time.Time { return time.Now().In(marketLocation) }

// DateOf returns the Date of the given timestamp, discarding time of day.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate normalizes s into a Date. It accepts "YYYYMMDD", "YYYY-MM-DD",
// and either form followed by a time component, which is discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "-", "")
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the Date as a midnight timestamp in loc.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, string(d), loc)
}

// ISO returns the date in "YYYY-MM-DD" form.
func (d Date) ISO() string {
	s := string(d)
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}

func (d Date) String() string { return string(d) }
