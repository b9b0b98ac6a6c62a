// Package logger builds the *slog.Logger handed to allocators by the memctl
// command. Library callers construct their own logger and pass it through
// alloc.Options.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logPrefix     = "memctl-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Discard is a logger that drops every record.
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures New.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum level. Zero value is LevelInfo
	Dir     string     // When set, JSON records go to a dated file in Dir
	Writer  io.Writer  // Text output when Dir is empty. Default: os.Stderr
}

// New builds a logger from opts. The returned close function releases the log
// file, if any, and is always safe to call.
func New(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if !opts.Enabled {
		return Discard, noop, nil
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.Dir == "" {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		return slog.New(slog.NewTextHandler(w, handlerOpts)), noop, nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, noop, err
	}

	// Clean up old logs (best-effort, ignore errors)
	cleanOldLogs(opts.Dir, time.Now())

	filename := filepath.Join(opts.Dir, logPrefix+time.Now().Format(time.DateOnly)+logSuffix)
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, noop, err
	}
	return slog.New(slog.NewJSONHandler(f, handlerOpts)), f.Close, nil
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// cleanOldLogs removes log files older than retentionDays.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		// Parse date from filename: memctl-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
