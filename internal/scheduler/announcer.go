package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/calendar"
	"StonkBot/internal/model"
	"StonkBot/internal/recorder"
)

const (
	MarketOpenMessage   = ":bell: The stock market is now open! :bell:"
	MarketClosedMessage = ":bell: The stock market is now closed! :bell:"
)

// HolidayMessage is posted instead of the open notice on a market holiday.
func HolidayMessage(name string) string {
	return fmt.Sprintf(":frowning: The stock market is closed today for %s! :frowning:", name)
}

// Poster delivers an announcement to one destination.
type Poster interface {
	Announce(ctx context.Context, text string) error
}

// Announcer posts the market open, close and holiday notices once per day.
//
// With CatchUp set, a notice fires on the first tick inside its window (open:
// [Open, Close), close: [Close, midnight)) that has not yet announced it for
// the day, so a late start or a missed tick still produces it. Without
// CatchUp only the tick landing in the exact minute fires.
type Announcer struct {
	Window   model.ScheduleWindow
	Holidays calendar.HolidayCalendar
	Recorder recorder.Recorder
	Posters  []Poster
	CatchUp  bool

	mu     sync.Mutex
	last   map[model.AnnouncementKind]string
	loaded bool
	now    func() time.Time
	log    zerolog.Logger
}

// NewAnnouncer creates an Announcer. The first poster is the primary
// destination; a notice counts as delivered once the primary accepts it.
func NewAnnouncer(w model.ScheduleWindow, hol calendar.HolidayCalendar, rec recorder.Recorder, catchUp bool, posters ...Poster) *Announcer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Announcer{
		Window:   w,
		Holidays: hol,
		Recorder: rec,
		Posters:  posters,
		CatchUp:  catchUp,
		last:     make(map[model.AnnouncementKind]string),
		now:      time.Now,
		log:      log.With().Str("component", "announcer").Logger(),
	}
}

// CatchUpFor returns want unless rec loses state on restart, in which case
// catching up would repeat notices already posted today.
func CatchUpFor(want bool, rec recorder.Recorder) bool {
	return want && recorder.Durable(rec)
}

// SetClock replaces the wall clock used by scheduled ticks.
func (a *Announcer) SetClock(now func() time.Time) {
	a.mu.Lock()
	a.now = now
	a.mu.Unlock()
}

// TickNow runs Tick at the current clock time.
func (a *Announcer) TickNow(ctx context.Context) {
	a.mu.Lock()
	now := a.now
	a.mu.Unlock()
	a.Tick(ctx, now())
}

// Tick evaluates the schedule at now and posts whatever is due.
func (a *Announcer) Tick(ctx context.Context, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restore()

	if !a.Window.TradingDay(now) {
		return
	}
	day := a.Window.Day(now)
	tod := a.Window.SinceMidnight(now)
	holiday := ""
	if a.Holidays != nil {
		holiday = a.Holidays.HolidayName(now)
	}

	if a.due(tod, a.Window.Open, a.Window.Close) && a.last[model.AnnounceOpen] != day {
		text := MarketOpenMessage
		if holiday != "" {
			text = HolidayMessage(holiday)
		}
		a.fire(ctx, model.AnnounceOpen, day, text)
	}

	if holiday == "" && a.due(tod, a.Window.Close, 24*time.Hour) && a.last[model.AnnounceClose] != day {
		a.fire(ctx, model.AnnounceClose, day, MarketClosedMessage)
	}
}

// Announced returns the last day a notice of kind went out.
func (a *Announcer) Announced(kind model.AnnouncementKind) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last[kind]
}

func (a *Announcer) due(tod, start, end time.Duration) bool {
	if a.CatchUp {
		return tod >= start && tod < end
	}
	return tod >= start && tod < start+time.Minute
}

func (a *Announcer) fire(ctx context.Context, kind model.AnnouncementKind, day, text string) {
	for i, p := range a.Posters {
		if err := p.Announce(ctx, text); err != nil {
			a.log.Error().Err(err).Str("kind", string(kind)).Int("poster", i).Msg("announce failed")
			if i == 0 {
				return
			}
		}
	}
	a.last[kind] = day
	if err := a.Recorder.MarkAnnounced(kind, day); err != nil {
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("persist announcement state")
	}
	a.log.Info().Str("kind", string(kind)).Str("day", day).Msg("announced")
}

func (a *Announcer) restore() {
	if a.loaded {
		return
	}
	a.loaded = true
	for _, kind := range []model.AnnouncementKind{model.AnnounceOpen, model.AnnounceClose} {
		day, err := a.Recorder.LastAnnounced(kind)
		if err != nil {
			a.log.Warn().Err(err).Str("kind", string(kind)).Msg("load announcement state")
			continue
		}
		if day != "" {
			a.last[kind] = day
		}
	}
}
