package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StonkBot/internal/model"
)

// SQLiteRecorder persists announcement state and the command log to SQLite.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("component", "recorder").Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS announcements (
			kind       TEXT PRIMARY KEY,
			day        TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS command_log (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			name        TEXT NOT NULL,
			args        TEXT,
			channel_id  TEXT,
			author_id   TEXT,
			outcome     TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_command_ts ON command_log(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_command_name ON command_log(name)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) LastAnnounced(kind model.AnnouncementKind) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var day string
	err := r.db.QueryRow(`SELECT day FROM announcements WHERE kind = ?`, string(kind)).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return day, err
}

func (r *SQLiteRecorder) MarkAnnounced(kind model.AnnouncementKind, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO announcements (kind, day, updated_at) VALUES (?,?,?)
		ON CONFLICT(kind) DO UPDATE SET day = excluded.day, updated_at = excluded.updated_at`,
		string(kind), day, time.Now().Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordCommand(evt *CommandEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO command_log
		(id, timestamp, name, args, channel_id, author_id, outcome, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, at.Unix(), evt.Name, evt.Args, evt.ChannelID, evt.AuthorID,
		evt.Outcome, evt.Duration.Milliseconds(),
	)
	return err
}

// CommandCount returns how many invocations of name were logged.
func (r *SQLiteRecorder) CommandCount(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM command_log WHERE name = ?`, name).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Str("component", "recorder").Msg("closing sqlite recorder")
	return r.db.Close()
}
