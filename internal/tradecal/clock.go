package tradecal

import "time"

// Clock classifies timestamps against the session schedule and the trading
// calendar, and resolves the reference trading date. All methods take an
// explicit timestamp; the system clock is read by the caller, never here.
type Clock struct {
	src   CalendarSource
	sched Schedule
}

// NewClock creates a Clock over the given calendar source and schedule. It
// returns an error if the schedule ordering is invalid.
func NewClock(src CalendarSource, sched Schedule) (*Clock, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	return &Clock{src: src, sched: sched}, nil
}

// IsInSession reports whether t falls inside the continuous trading session
// (open..close inclusive) on a trading date.
func (c *Clock) IsInSession(t time.Time) bool {
	if !c.src.Calendar().IsTradingDate(DateOf(t)) {
		return false
	}
	tod := timeOfDay(t)
	return tod >= c.sched.Open && tod <= c.sched.Close
}

// IsInExtendedSession reports whether t falls inside the extended session,
// which begins with the opening call auction.
func (c *Clock) IsInExtendedSession(t time.Time) bool {
	if !c.src.Calendar().IsTradingDate(DateOf(t)) {
		return false
	}
	tod := timeOfDay(t)
	return tod >= c.sched.AuctionStart && tod <= c.sched.Close
}

// IsPaused reports whether t falls inside the lunch break on a trading date.
func (c *Clock) IsPaused(t time.Time) bool {
	if !c.src.Calendar().IsTradingDate(DateOf(t)) {
		return false
	}
	tod := timeOfDay(t)
	return tod >= c.sched.PauseStart && tod < c.sched.PauseEnd
}

// IsClosed reports whether the session of t's day is over. A non-trading day
// is always closed: its data set is as complete as it will ever be.
func (c *Clock) IsClosed(t time.Time) bool {
	if !c.src.Calendar().IsTradingDate(DateOf(t)) {
		return true
	}
	return timeOfDay(t) > c.sched.Close
}

// IsOpen reports whether the session of t's day has started. The open
// boundary is inclusive.
func (c *Clock) IsOpen(t time.Time) bool {
	if !c.src.Calendar().IsTradingDate(DateOf(t)) {
		return false
	}
	return timeOfDay(t) >= c.sched.Open
}

// ReferenceDate resolves which trading date's data is authoritative at the
// wall-clock time now. The cases are checked in order; the first match wins:
//
//  1. trading date, session in progress     → today (best partial data)
//  2. trading date, session over            → today (complete)
//  3. trading date, before open             → previous trading date
//  4. non-trading date                      → most recent trading date before today
//
// Case 4 uses at-or-before lookup rather than PreviousTradingDate: a weekend
// past the end of the calendar must resolve to the last known trading date,
// not step back past it.
//
// It returns ErrDateNotFound when the calendar has no earlier trading date,
// which callers must handle as "no authoritative data yet".
func (c *Clock) ReferenceDate(now time.Time) (Date, error) {
	cal := c.src.Calendar()
	today := DateOf(now)

	if cal.IsTradingDate(today) {
		if c.IsOpen(now) && !c.IsClosed(now) {
			return today, nil
		}
		if c.IsClosed(now) {
			return today, nil
		}
		return cal.PreviousTradingDate(today, 1)
	}
	return cal.TradingDateOnOrBefore(today)
}
