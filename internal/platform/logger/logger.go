// Package logger builds the process slog.Logger, optionally teeing records
// into a daily file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string
	Format string
	// Dir enables a daily file sink Log-YYYYMMDD.txt when non-empty.
	Dir string
}

// New returns the logger and a close func releasing the file sink.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
	}

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if opts.Dir != "" {
		file := NewDailyFile(opts.Dir, "Log-", ".txt")
		w = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	return slog.New(newHandler(w, level, opts.Format)), closeFn, nil
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	ho := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, ho)
	}
	return slog.NewJSONHandler(w, ho)
}
