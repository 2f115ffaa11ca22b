package scheduler

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultActivities is the status cycle shown as the bot's game activity.
var DefaultActivities = []string{
	"The Stock Market",
	"The Bull Market",
	"The Bear Market",
	"The Kankgaroo Market",
	"The Wolf Market",
	"The Cryptocurrency Market",
	"Theta Gang",
	"It Bearish",
	"It Bullish",
	"An Online Casino",
}

// PresenceSetter shows an activity string as the bot's status.
type PresenceSetter interface {
	SetPresence(activity string) error
}

// Rotator walks a fixed activity list round-robin.
type Rotator struct {
	mu     sync.Mutex
	items  []string
	cursor int
	setter PresenceSetter
}

// NewRotator creates a Rotator over items, or DefaultActivities when empty.
func NewRotator(setter PresenceSetter, items ...string) *Rotator {
	if len(items) == 0 {
		items = DefaultActivities
	}
	cp := make([]string, len(items))
	copy(cp, items)
	return &Rotator{items: cp, setter: setter}
}

// Next returns the current activity and advances the cursor, wrapping at the end.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.items[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.items)
	return s
}

// Tick pushes the next activity to the setter.
func (r *Rotator) Tick() {
	activity := r.Next()
	if r.setter == nil {
		return
	}
	if err := r.setter.SetPresence(activity); err != nil {
		log.Warn().Str("component", "presence").Err(err).Str("activity", activity).Msg("update presence failed")
	}
}
