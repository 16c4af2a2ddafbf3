package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to stdout in the configured format, with
// optional context extractors. An invalid level falls back to info.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(WithContext(cfg.handler(os.Stdout), extractors...))
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func (c Config) handler(w io.Writer) slog.Handler {
	level, _ := c.level()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
