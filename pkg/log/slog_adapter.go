package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes service events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Info level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category),
		slog.String("subject", event.Subject),
		slog.String("action", event.Action),
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}
	if event.Instance != "" {
		attrs = append(attrs, slog.String("instance", event.Instance))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelInfo, "event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
