package flatdoc

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("debug msg", "k", "v")
	logger.Info("info msg", "collection", "users")
	logger.Warn("warn msg")
	logger.Error("error msg", "error", "boom")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[1].Message != "info msg" {
		t.Errorf("message = %q, want %q", entries[1].Message, "info msg")
	}
	fields := entries[1].ContextMap()
	if fields["collection"] != "users" {
		t.Errorf("collection field = %v, want %q", fields["collection"], "users")
	}
	if entries[3].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error", entries[3].Level)
	}
}

func TestZapLoggerConstructors(t *testing.T) {
	prod, err := NewProductionZapLogger()
	if err != nil {
		t.Fatalf("NewProductionZapLogger failed: %v", err)
	}
	if prod == nil {
		t.Fatal("expected logger")
	}

	dev, err := NewDevelopmentZapLogger()
	if err != nil {
		t.Fatalf("NewDevelopmentZapLogger failed: %v", err)
	}
	if dev == nil {
		t.Fatal("expected logger")
	}

	sugar := NewZapLoggerFromSugar(zap.NewNop().Sugar())
	sugar.Info("goes nowhere")
	if err := sugar.Sync(); err != nil {
		t.Errorf("Sync failed: %v", err)
	}
}
