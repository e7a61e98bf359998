package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Category: CategoryDevice,
		Subject:  "Lamp",
		Action:   ActionRetry,
		Detail:   "on",
	})

	out := buf.String()
	for _, want := range []string{"category=DEVICE", "subject=Lamp", "action=RETRY", "detail=on"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapter_OmitsEmptyDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Category: CategoryDevice,
		Subject:  "Lamp",
		Action:   ActionTimeout,
	})

	if strings.Contains(buf.String(), "detail=") {
		t.Errorf("detail should be omitted: %s", buf.String())
	}
}
