// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log level and an optional rotated file sink.
type Options struct {
	Debug      bool
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Setup installs a console logger on stderr, teed into a rotating JSON file
// when File is set. The returned closer flushes the file sink.
func Setup(opts Options) io.Closer {
	return setup(opts, os.Stderr)
}

func setup(opts Options, console io.Writer) io.Closer {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "2006-01-02 15:04:05"}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
