package tradecal

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
// Second resolution matters at the boundaries: 15:00:30 is after the close.
type TimeOfDay int

// At returns the TimeOfDay for h hours and m minutes.
func At(h, m int) TimeOfDay { return TimeOfDay((h*60 + m) * 60) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

func timeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Schedule is the fixed daily session schedule of the exchange. All fields
// are wall-clock times in the exchange's local day.
type Schedule struct {
	AuctionStart TimeOfDay // opening call auction begins
	AuctionEnd   TimeOfDay // opening call auction ends
	Open         TimeOfDay // continuous trading begins
	PauseStart   TimeOfDay // lunch break begins
	PauseEnd     TimeOfDay // lunch break ends
	Close        TimeOfDay // continuous trading ends
}

// DefaultSchedule is the SSE/SZSE A-share session schedule.
var DefaultSchedule = Schedule{
	AuctionStart: At(9, 15),
	AuctionEnd:   At(9, 25),
	Open:         At(9, 30),
	PauseStart:   At(11, 30),
	PauseEnd:     At(13, 0),
	Close:        At(15, 0),
}

// Validate checks the required ordering of the schedule fields:
// auctionStart < auctionEnd <= open < pauseStart < pauseEnd <= close.
// A violation is a configuration error and should fail startup.
func (s Schedule) Validate() error {
	ok := s.AuctionStart < s.AuctionEnd &&
		s.AuctionEnd <= s.Open &&
		s.Open < s.PauseStart &&
		s.PauseStart < s.PauseEnd &&
		s.PauseEnd <= s.Close
	if !ok {
		return fmt.Errorf("invalid schedule ordering: auction %s-%s open %s pause %s-%s close %s",
			s.AuctionStart, s.AuctionEnd, s.Open, s.PauseStart, s.PauseEnd, s.Close)
	}
	return nil
}
