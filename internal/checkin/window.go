package checkin

import (
	"fmt"
	"strconv"
	"time"
)

// afterIDScale converts a unix timestamp into a GroupMe message-id cursor.
// Message ids are roughly the creation time in seconds followed by eight
// more digits, so any id created after the timestamp sorts above it.
const afterIDScale = 100_000_000

// Window identifies the day being processed.
type Window struct {
	// Day is midnight of the target day in the window's location.
	Day time.Time

	// Start is when check-ins for Day begin to count.
	Start time.Time
}

// NewWindow returns the window for "yesterday" relative to now, opening at
// startHour on that day in loc.
func NewWindow(now time.Time, loc *time.Location, startHour int) (Window, error) {
	if loc == nil {
		return Window{}, fmt.Errorf("new window: nil location")
	}
	if startHour < 0 || startHour > 23 {
		return Window{}, fmt.Errorf("new window: start hour %d out of range", startHour)
	}
	local := now.In(loc)
	y, m, d := local.AddDate(0, 0, -1).Date()
	return Window{
		Day:   time.Date(y, m, d, 0, 0, 0, 0, loc),
		Start: time.Date(y, m, d, startHour, 0, 0, 0, loc),
	}, nil
}

// AfterID is the message cursor for the window start.
func (w Window) AfterID() string {
	return strconv.FormatInt(w.Start.Unix()*afterIDScale, 10)
}

// Label is the human-readable target day, e.g. "July 18, 2025".
func (w Window) Label() string {
	return w.Day.Format("January 02, 2006")
}
