package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandleWritesConsoleAlways(t *testing.T) {
	var console, cdc bytes.Buffer
	h := New(&console, &cdc, func() bool { return false }, nil)
	logger := slog.New(h)
	logger.Info("boot:ready")

	if !strings.Contains(console.String(), "boot:ready") {
		t.Fatalf("console output = %q, want it to contain the message", console.String())
	}
	if cdc.Len() != 0 {
		t.Fatalf("cdc output = %q, want empty when cdcConnected() is false", cdc.String())
	}
}

func TestHandleTeesToCDCWhenConnected(t *testing.T) {
	var console, cdc bytes.Buffer
	h := New(&console, &cdc, func() bool { return true }, nil)
	logger := slog.New(h)
	logger.Warn("fs:mount-failed")

	if !strings.Contains(cdc.String(), "fs:mount-failed") {
		t.Fatalf("cdc output = %q, want it to contain the message", cdc.String())
	}
}

func TestWithAttrsPropagatesToBothSinks(t *testing.T) {
	var console, cdc bytes.Buffer
	h := New(&console, &cdc, func() bool { return true }, nil)
	logger := slog.New(h).With(slog.String("component", "ftl"))
	logger.Info("sync:done")

	if !strings.Contains(console.String(), "component=ftl") {
		t.Fatalf("console output = %q, want component attr", console.String())
	}
	if !strings.Contains(cdc.String(), "component=ftl") {
		t.Fatalf("cdc output = %q, want component attr", cdc.String())
	}
}
