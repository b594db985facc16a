// Package logging builds the slog logger used by the command line.
//
// Records go to a log file in the dot directory. The file is truncated
// when it has grown past a size limit. In verbose mode debug records are
// also written to stderr.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures Setup.
type Options struct {
	Path     string
	MaxBytes int64
	Verbose  bool
	Stderr   io.Writer
}

// Setup opens the log file and returns a logger and a function that
// closes the file.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if info, err := os.Stat(opts.Path); err == nil && opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(opts.Path, flags, 0644)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}),
	}
	if opts.Verbose {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return slog.New(fanout(handlers)), f.Close, nil
}

// fanout sends each record to every handler enabled for its level.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, handler := range h {
		out[i] = handler.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, handler := range h {
		out[i] = handler.WithGroup(name)
	}
	return out
}
