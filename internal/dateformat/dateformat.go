// Package dateformat renders timestamps the way the mobile clients
// expect them: Hungarian locale, with a relative display format that
// depends on how far in the past the timestamp lies.
package dateformat

import (
	"fmt"
	"time"
)

var monthShort = [12]string{
	"jan", "feb", "márc", "ápr", "máj", "jún",
	"júl", "aug", "szept", "okt", "nov", "dec",
}

var weekdayLong = [7]string{
	"vasárnap", "hétfő", "kedd", "szerda",
	"csütörtök", "péntek", "szombat",
}

// Day returns the day-of-month of an event start.
func Day(t time.Time) int {
	return t.Day()
}

// MonthShort returns the abbreviated Hungarian month name.
func MonthShort(t time.Time) string {
	return monthShort[t.Month()-1]
}

// TimeRange formats an event's start and end as "18:00-19:30".
func TimeRange(start, end time.Time) string {
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// Dynamic maps a timestamp to its locale-relative display string:
//
//	today             → time of day   "16:20"
//	within a week     → weekday name  "hétfő"
//	within this year  → month + day   "nov. 22."
//	older             → full date     "2022. 10. 20."
//
// now is injected so the mapping is a pure function of its inputs.
func Dynamic(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()

	switch {
	case ty == ny && tm == nm && td == nd:
		return t.Format("15:04")
	case now.Sub(t) < 7*24*time.Hour:
		return weekdayLong[t.Weekday()]
	case ty == ny:
		return fmt.Sprintf("%s. %d.", monthShort[tm-1], td)
	default:
		return fmt.Sprintf("%04d. %02d. %02d.", ty, tm, td)
	}
}

// DynamicNow is Dynamic against the current wall clock.
func DynamicNow(t time.Time) string {
	return Dynamic(t, time.Now())
}
