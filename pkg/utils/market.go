package utils

import "time"

// DefaultLocation is the timezone SPX trading hours are quoted in.
var DefaultLocation *time.Location

func init() {
	var err error
	DefaultLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		DefaultLocation = time.FixedZone("ET", -5*60*60)
	}
}

// ClockString renders a time as the HH:MM string trigger matching uses.
func ClockString(t time.Time) string {
	return t.Format("15:04")
}

// DayName renders a time's weekday as trigger matching compares it.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// NextOccurrence returns the next wall-clock instant matching the given
// day name and HH:MM clock in loc, strictly after now.
func NextOccurrence(now time.Time, day, clock string, loc *time.Location) (time.Time, bool) {
	entry, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	now = now.In(loc)
	for offset := 0; offset < 8; offset++ {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), entry.Hour(), entry.Minute(), 0, 0, loc)
		candidate = candidate.AddDate(0, 0, offset)
		if candidate.Weekday().String() == day && candidate.After(now) {
			return candidate, true
		}
	}
	return time.Time{}, false
}
