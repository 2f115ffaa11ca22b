// Package calendar answers holiday questions for the market schedule.
package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// HolidayCalendar names the holiday falling on a date, if any.
type HolidayCalendar interface {
	HolidayName(t time.Time) string
}

// USHolidays is the US federal holiday calendar. Observed dates count as
// holidays and carry an " (Observed)" suffix.
type USHolidays struct {
	Location *time.Location
	holidays []*cal.Holiday
}

// NewUSHolidays builds the calendar evaluated in loc.
func NewUSHolidays(loc *time.Location) *USHolidays {
	if loc == nil {
		loc = time.UTC
	}
	return &USHolidays{Location: loc, holidays: us.Holidays}
}

// HolidayName returns the holiday on t's local date, or "" on a regular day.
func (h *USHolidays) HolidayName(t time.Time) string {
	y, m, d := t.In(h.Location).Date()
	for _, hol := range h.holidays {
		actual, observed := hol.Calc(y)
		if sameDate(actual, y, m, d) {
			return hol.Name
		}
		if sameDate(observed, y, m, d) {
			return hol.Name + " (Observed)"
		}
	}
	// New Year's Day falling on a Saturday is observed on Dec 31 of the prior year.
	for _, hol := range h.holidays {
		if _, observed := hol.Calc(y + 1); sameDate(observed, y, m, d) {
			return hol.Name + " (Observed)"
		}
	}
	return ""
}

func sameDate(t time.Time, y int, m time.Month, d int) bool {
	if t.IsZero() {
		return false
	}
	ty, tm, td := t.Date()
	return ty == y && tm == m && td == d
}

// Fixed is a HolidayCalendar backed by a date to name map, keyed YYYY-MM-DD.
type Fixed map[string]string

func (f Fixed) HolidayName(t time.Time) string {
	return f[t.Format("2006-01-02")]
}
