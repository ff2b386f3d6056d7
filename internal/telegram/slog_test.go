package telegram

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandlerWithoutBot(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger := slog.New(handler).With("component", "sessions")

	logger.Debug("hidden")
	logger.Warn("save roster", "error", "disk full")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record leaked: %q", out)
	}
	if !strings.Contains(out, "component=sessions") || !strings.Contains(out, `error="disk full"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
