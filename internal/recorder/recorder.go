package recorder

import (
	"time"

	"StonkBot/internal/model"
)

// CommandEvent is the audit row written for every command invocation.
type CommandEvent struct {
	ID        string // invocation id
	Name      string
	Args      string
	ChannelID string
	AuthorID  string
	Outcome   string // "ok", "no_data", "bad_args", "denied", "upstream", "error", "panic"
	Duration  time.Duration
	At        time.Time
}

// Recorder persists announcement state and command history.
type Recorder interface {
	// LastAnnounced returns the YYYY-MM-DD of the last announcement of kind, or "".
	LastAnnounced(kind model.AnnouncementKind) (string, error)
	MarkAnnounced(kind model.AnnouncementKind, day string) error
	RecordCommand(evt *CommandEvent) error
	Close() error
}

// Durable reports whether rec keeps announcement state across restarts.
func Durable(rec Recorder) bool {
	if rec == nil {
		return false
	}
	_, noop := rec.(*NoopRecorder)
	return !noop
}
