package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StonkBot/internal/model"
)

func openTemp(t *testing.T) (*SQLiteRecorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stonkbot.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	return r, path
}

func TestSQLiteRecorder_Announcements(t *testing.T) {
	r, path := openTemp(t)

	day, err := r.LastAnnounced(model.AnnounceOpen)
	require.NoError(t, err)
	assert.Empty(t, day)

	require.NoError(t, r.MarkAnnounced(model.AnnounceOpen, "2024-03-04"))
	require.NoError(t, r.MarkAnnounced(model.AnnounceOpen, "2024-03-05"))
	require.NoError(t, r.MarkAnnounced(model.AnnounceClose, "2024-03-04"))
	require.NoError(t, r.Close())

	// state survives a reopen
	r2, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r2.Close()

	day, err = r2.LastAnnounced(model.AnnounceOpen)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", day)

	day, err = r2.LastAnnounced(model.AnnounceClose)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", day)
}

func TestSQLiteRecorder_Commands(t *testing.T) {
	r, _ := openTemp(t)
	defer r.Close()

	require.NoError(t, r.RecordCommand(&CommandEvent{
		ID: "a", Name: "yg", Args: "SPY", ChannelID: "1", AuthorID: "2", Outcome: "ok", Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, r.RecordCommand(&CommandEvent{ID: "b", Name: "yg", Outcome: "no_data"}))
	require.NoError(t, r.RecordCommand(&CommandEvent{ID: "c", Name: "ping", Outcome: "ok"}))

	n, err := r.CommandCount("yg")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// ids are unique
	assert.Error(t, r.RecordCommand(&CommandEvent{ID: "a", Name: "yg"}))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	day, err := r.LastAnnounced(model.AnnounceClose)
	assert.NoError(t, err)
	assert.Empty(t, day)
	assert.NoError(t, r.MarkAnnounced(model.AnnounceClose, "2024-01-02"))
	assert.NoError(t, r.RecordCommand(&CommandEvent{}))
	assert.NoError(t, r.Close())
}

func TestDurable(t *testing.T) {
	assert.False(t, Durable(nil))
	assert.False(t, Durable(NewNoopRecorder()))

	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "durable.db"))
	require.NoError(t, err)
	defer r.Close()
	assert.True(t, Durable(r))
}
