package recorder

import "StonkBot/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) LastAnnounced(_ model.AnnouncementKind) (string, error) { return "", nil }
func (n *NoopRecorder) MarkAnnounced(_ model.AnnouncementKind, _ string) error { return nil }
func (n *NoopRecorder) RecordCommand(_ *CommandEvent) error { return nil }
func (n *NoopRecorder) Close() error { return nil }
