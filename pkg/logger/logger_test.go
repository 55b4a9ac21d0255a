package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStandardLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	logger.Info("test message %d", 123)

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] prefix, got: %s", output)
	}
	if !strings.Contains(output, "test message 123") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Warning(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	logger.Warning("warning message %s", "test")

	output := buf.String()
	if !strings.Contains(output, "[WARNING]") {
		t.Errorf("expected [WARNING] prefix, got: %s", output)
	}
	if !strings.Contains(output, "warning message test") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	logger.Error("error message: %v", "failed")

	output := buf.String()
	if !strings.Contains(output, "[ERROR]") {
		t.Errorf("expected [ERROR] prefix, got: %s", output)
	}
	if !strings.Contains(output, "error message: failed") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	l := log.New(buf, "", 0)
	logger := NewStandardLogger(l)

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	// Should not panic
	logger.Info("test")
	logger.Warning("test")
	logger.Error("test")

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMockLogger_RecordsCalls(t *testing.T) {
	logger := NewMockLogger()

	logger.Info("info %d", 1)
	logger.Info("info %d", 2)
	logger.Warning("warn %s", "test")
	logger.Error("err %v", "fail")

	if len(logger.InfoCalls) != 2 {
		t.Errorf("expected 2 info calls, got %d", len(logger.InfoCalls))
	}
	if logger.InfoCalls[0] != "info 1" || logger.InfoCalls[1] != "info 2" {
		t.Errorf("unexpected info calls: %v", logger.InfoCalls)
	}

	if len(logger.WarningCalls) != 1 || logger.WarningCalls[0] != "warn test" {
		t.Errorf("unexpected warning calls: %v", logger.WarningCalls)
	}

	if len(logger.ErrorCalls) != 1 || logger.ErrorCalls[0] != "err fail" {
		t.Errorf("unexpected error calls: %v", logger.ErrorCalls)
	}
}

func TestMockLogger_Close(t *testing.T) {
	logger := NewMockLogger()

	if logger.CloseCalled {
		t.Error("CloseCalled should be false initially")
	}

	if err := logger.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}

	if !logger.CloseCalled {
		t.Error("CloseCalled should be true after Close()")
	}
}

// TestWithPrefix_TagsMessages exercises the decorator the way
// pkg/rangedl's writer loop and engine use it: one prefixed view per
// session id, sharing the underlying Logger.
func TestWithPrefix_TagsMessages(t *testing.T) {
	mock := NewMockLogger()
	scoped := WithPrefix(mock, "session 7: ")

	scoped.Info("dispatched range %d-%d", 0, 3)
	scoped.Warning("latched pause")
	scoped.Error("write failed: %v", "disk full")

	if got := mock.InfoCalls[0]; got != "session 7: dispatched range 0-3" {
		t.Errorf("unexpected info call: %q", got)
	}
	if got := mock.WarningCalls[0]; got != "session 7: latched pause" {
		t.Errorf("unexpected warning call: %q", got)
	}
	if got := mock.ErrorCalls[0]; got != "session 7: write failed: disk full" {
		t.Errorf("unexpected error call: %q", got)
	}
}

func TestWithPrefix_CloseDelegatesToWrapped(t *testing.T) {
	mock := NewMockLogger()
	scoped := WithPrefix(mock, "session 1: ")

	if err := scoped.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
	if !mock.CloseCalled {
		t.Error("expected Close to delegate to the wrapped logger")
	}
}
