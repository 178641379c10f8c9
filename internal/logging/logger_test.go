package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggers(t *testing.T) {
	t.Parallel()

	for _, dev := range []bool{true, false} {
		logger, err := New(dev)
		if err != nil {
			t.Fatalf("New(%v) error = %v", dev, err)
		}
		if logger == nil {
			t.Fatalf("New(%v) returned nil logger", dev)
		}
		logger.Info("logger ready", zap.Bool("development", dev))
		_ = logger.Sync() //nolint:errcheck // stderr sync fails on some platforms
	}
}

func TestDevelopmentLoggerEnablesDebug(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level to be enabled in development")
	}

	prod, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if prod.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level to be disabled in production")
	}
}
