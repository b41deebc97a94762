// Package calendar provides trading-hours awareness for the A-share market.
package calendar

import "time"

// Session windows in minutes since midnight, both endpoints inclusive.
// Morning covers the 09:15 call auction through the 11:30 close; afternoon
// is 13:00 through 15:00.
const (
	morningOpen    = 9*60 + 15
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
)

// IsTradingTime reports whether t falls inside an A-share trading session,
// using local wall-clock time. Weekends are always closed. Exchange holidays
// are not modeled; a weekday holiday polls anyway and degrades through the
// transport/empty-data path.
func IsTradingTime(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return (m >= morningOpen && m <= morningClose) || (m >= afternoonOpen && m <= afternoonClose)
}
