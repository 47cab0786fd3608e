package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitLogger_Level(t *testing.T) {
	prev := logger
	defer func() {
		logger = prev
		slog.SetDefault(prev)
	}()

	var buf bytes.Buffer
	initLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "note", MustParseNote("A4"))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "note=A4") {
		t.Errorf("log output %q", out)
	}
	if parseLogLevel("bogus") != slog.LevelInfo {
		t.Error("unknown level did not default to info")
	}
}
