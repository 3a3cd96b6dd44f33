package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerFiltersNil(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := newFanoutHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout enabled when any handler accepts the level")
	}

	logger := slog.New(h).With("run_id", "abc")
	logger.Debug("poll tick")
	logger.Warn("missing subtitle")

	if strings.Contains(console.String(), "poll tick") {
		t.Fatalf("console should not receive debug records: %q", console.String())
	}
	if !strings.Contains(console.String(), "missing subtitle") {
		t.Fatalf("console missing warn record: %q", console.String())
	}
	for _, msg := range []string{"poll tick", "missing subtitle", "run_id=abc"} {
		if !strings.Contains(file.String(), msg) {
			t.Fatalf("file output missing %q: %q", msg, file.String())
		}
	}
}
