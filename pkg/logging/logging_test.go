package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLoggerRoutesOutput(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Debug("hello", zap.String("k", "v"))
	Warn("careful")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "hello" {
		t.Fatalf("unexpected first message: %q", entries[0].Message)
	}
}

func TestCurrentFallsBackToNop(t *testing.T) {
	SetLogger(nil)
	defer SetLogger(nil)

	// Must not panic even with no logger installed.
	Info("no logger installed")
}
