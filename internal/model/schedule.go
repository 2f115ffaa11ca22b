package model

import "time"

// ScheduleWindow holds the regular session of the exchange.
type ScheduleWindow struct {
	Open     time.Duration // offset from local midnight
	Close    time.Duration
	Weekdays [7]bool
	Location *time.Location
}

// DefaultSchedule returns the NYSE regular session, 09:30 to 16:00 US/Eastern, Monday to Friday.
func DefaultSchedule(loc *time.Location) ScheduleWindow {
	w := ScheduleWindow{
		Open:     9*time.Hour + 30*time.Minute,
		Close:    16 * time.Hour,
		Location: loc,
	}
	for d := time.Monday; d <= time.Friday; d++ {
		w.Weekdays[d] = true
	}
	return w
}

// TradingDay reports whether t falls on a configured weekday in the window's location.
func (w ScheduleWindow) TradingDay(t time.Time) bool {
	return w.Weekdays[t.In(w.Location).Weekday()]
}

// SinceMidnight returns the local wall-clock time-of-day of t. It reads the
// clock fields rather than subtracting midnight so DST transition days still
// put 09:30 at 9h30m.
func (w ScheduleWindow) SinceMidnight(t time.Time) time.Duration {
	h, m, s := t.In(w.Location).Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// Day returns the local calendar date of t as YYYY-MM-DD.
func (w ScheduleWindow) Day(t time.Time) string {
	return t.In(w.Location).Format("2006-01-02")
}

// AnnouncementKind names a once-per-day notice.
type AnnouncementKind string

const (
	AnnounceOpen  AnnouncementKind = "open"
	AnnounceClose AnnouncementKind = "close"
)
