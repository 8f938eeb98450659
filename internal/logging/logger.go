package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type config struct {
	w    io.Writer
	json bool
}

// Option configures a logger built by New.
type Option func(*config)

// WithWriter sends log lines to w instead of Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithJSON switches to the JSON handler (for log collectors).
func WithJSON(enabled bool) Option {
	return func(c *config) {
		c.json = enabled
	}
}

// New creates a configured application logger.
// It writes to Stderr (to keep Stdout for results and JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	cfg := config{w: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if cfg.json {
		return slog.New(slog.NewJSONHandler(cfg.w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(cfg.w, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel reads a level name as accepted by the --log-level flag.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
