package tradecal

import (
	"errors"
	"testing"
	"time"
)

func at(t *testing.T, date string, hour, min int) time.Time {
	t.Helper()
	d, err := ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	day, err := d.Time(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func newTestClock(t *testing.T, cal *Calendar) *Clock {
	t.Helper()
	clock, err := NewClock(cal, DefaultSchedule)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	return clock
}

func TestScheduleValidate(t *testing.T) {
	if err := DefaultSchedule.Validate(); err != nil {
		t.Errorf("DefaultSchedule.Validate() = %v", err)
	}

	bad := DefaultSchedule
	bad.Open = At(9, 10) // before auction end
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted open before auction end")
	}

	bad = DefaultSchedule
	bad.PauseEnd = At(15, 30) // after close
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted pause end after close")
	}

	if _, err := NewClock(septemberCalendar(t), bad); err == nil {
		t.Error("NewClock accepted an invalid schedule")
	}
}

func TestSessionPredicates(t *testing.T) {
	clock := newTestClock(t, septemberCalendar(t))
	const day = "20250903" // Wednesday, trading date

	cases := []struct {
		name                                     string
		ts                                       time.Time
		inSession, extended, paused, closed, open bool
	}{
		{"pre-market 03:00", at(t, day, 3, 0), false, false, false, false, false},
		{"auction 09:20", at(t, day, 9, 20), false, true, false, false, false},
		{"between auction and open 09:27", at(t, day, 9, 27), false, true, false, false, false},
		{"open boundary 09:30", at(t, day, 9, 30), true, true, false, false, true},
		{"mid-morning 10:30", at(t, day, 10, 30), true, true, false, false, true},
		{"pause start 11:30", at(t, day, 11, 30), true, true, true, false, true},
		{"lunch 12:00", at(t, day, 12, 0), true, true, true, false, true},
		{"pause end 13:00", at(t, day, 13, 0), true, true, false, false, true},
		{"afternoon 14:00", at(t, day, 14, 0), true, true, false, false, true},
		{"close boundary 15:00", at(t, day, 15, 0), true, true, false, false, true},
		{"post-close 16:00", at(t, day, 16, 0), false, false, false, true, true},
	}

	for _, tc := range cases {
		if got := clock.IsInSession(tc.ts); got != tc.inSession {
			t.Errorf("%s: IsInSession = %v, want %v", tc.name, got, tc.inSession)
		}
		if got := clock.IsInExtendedSession(tc.ts); got != tc.extended {
			t.Errorf("%s: IsInExtendedSession = %v, want %v", tc.name, got, tc.extended)
		}
		if got := clock.IsPaused(tc.ts); got != tc.paused {
			t.Errorf("%s: IsPaused = %v, want %v", tc.name, got, tc.paused)
		}
		if got := clock.IsClosed(tc.ts); got != tc.closed {
			t.Errorf("%s: IsClosed = %v, want %v", tc.name, got, tc.closed)
		}
		if got := clock.IsOpen(tc.ts); got != tc.open {
			t.Errorf("%s: IsOpen = %v, want %v", tc.name, got, tc.open)
		}
	}
}

// The schedule boundaries are exact to the second: half a minute past the
// close the session is over, half a minute before the open it has not begun.
func TestSessionBoundarySeconds(t *testing.T) {
	clock := newTestClock(t, septemberCalendar(t))
	const day = "20250903"

	pastClose := at(t, day, 15, 0).Add(30 * time.Second)
	if clock.IsInSession(pastClose) {
		t.Error("IsInSession true at 15:00:30")
	}
	if clock.IsInExtendedSession(pastClose) {
		t.Error("IsInExtendedSession true at 15:00:30")
	}
	if !clock.IsClosed(pastClose) {
		t.Error("IsClosed false at 15:00:30")
	}
	if got, err := clock.ReferenceDate(pastClose); err != nil || got != "20250903" {
		t.Errorf("ReferenceDate at 15:00:30 = %s, %v, want 20250903", got, err)
	}

	beforeOpen := at(t, day, 9, 29).Add(30 * time.Second)
	if clock.IsInSession(beforeOpen) || clock.IsOpen(beforeOpen) {
		t.Error("session open at 09:29:30")
	}

	beforePause := at(t, day, 11, 29).Add(30 * time.Second)
	if clock.IsPaused(beforePause) {
		t.Error("IsPaused true at 11:29:30")
	}
	intoPause := at(t, day, 11, 30).Add(30 * time.Second)
	if !clock.IsPaused(intoPause) {
		t.Error("IsPaused false at 11:30:30")
	}
}

func TestPredicatesOnNonTradingDate(t *testing.T) {
	clock := newTestClock(t, septemberCalendar(t))
	const saturday = "20250906"

	for _, hm := range [][2]int{{0, 0}, {10, 30}, {12, 0}, {23, 59}} {
		ts := at(t, saturday, hm[0], hm[1])
		if clock.IsInSession(ts) || clock.IsInExtendedSession(ts) || clock.IsPaused(ts) || clock.IsOpen(ts) {
			t.Errorf("session predicate true on non-trading date at %02d:%02d", hm[0], hm[1])
		}
		// Non-trading days are always closed, regardless of time of day.
		if !clock.IsClosed(ts) {
			t.Errorf("IsClosed false on non-trading date at %02d:%02d", hm[0], hm[1])
		}
	}
}

func TestReferenceDate(t *testing.T) {
	clock := newTestClock(t, septemberCalendar(t))

	cases := []struct {
		name string
		now  time.Time
		want Date
	}{
		{"trading day pre-market", at(t, "20250903", 3, 0), "20250902"},
		{"trading day mid-session", at(t, "20250903", 10, 30), "20250903"},
		{"trading day during pause", at(t, "20250903", 12, 0), "20250903"},
		{"trading day post-close", at(t, "20250903", 16, 0), "20250903"},
		{"trading day at open", at(t, "20250903", 9, 30), "20250903"},
		{"saturday after last known date", at(t, "20250906", 12, 0), "20250905"},
		{"sunday after last known date", at(t, "20250907", 12, 0), "20250905"},
	}

	for _, tc := range cases {
		got, err := clock.ReferenceDate(tc.now)
		if err != nil {
			t.Errorf("%s: ReferenceDate error: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: ReferenceDate = %s, want %s", tc.name, got, tc.want)
		}
	}
}

// Saturday and Sunday between two known trading weeks resolve to the Friday
// before them, not to a date in the following week.
func TestReferenceDateWeekendBetweenKnownWeeks(t *testing.T) {
	cal := NewCalendar(mustDates(t,
		"20250904", "20250905", "20250908", "20250909",
	), time.Now(), false)
	clock := newTestClock(t, cal)

	for _, day := range []string{"20250906", "20250907"} {
		got, err := clock.ReferenceDate(at(t, day, 12, 0))
		if err != nil {
			t.Fatalf("ReferenceDate(%s): %v", day, err)
		}
		if got != "20250905" {
			t.Errorf("ReferenceDate(%s) = %s, want 20250905", day, got)
		}
	}
}

func TestReferenceDateCalendarExhausted(t *testing.T) {
	// Single-date calendar: pre-market on that date has no earlier session.
	cal := NewCalendar(mustDates(t, "20250901"), time.Now(), false)
	clock := newTestClock(t, cal)

	if _, err := clock.ReferenceDate(at(t, "20250901", 3, 0)); !errors.Is(err, ErrDateNotFound) {
		t.Errorf("ReferenceDate pre-market on first known date error = %v, want ErrDateNotFound", err)
	}

	empty := NewCalendar(nil, time.Time{}, false)
	clock = newTestClock(t, empty)
	if _, err := clock.ReferenceDate(at(t, "20250903", 10, 30)); !errors.Is(err, ErrDateNotFound) {
		t.Errorf("ReferenceDate on empty calendar error = %v, want ErrDateNotFound", err)
	}
}
