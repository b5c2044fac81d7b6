package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/oligo/mdhl/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "invalid", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
		{"case insensitive DEBUG", "DEBUG", log.DebugLevel},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			if logger == nil {
				t.Fatal("New returned nil logger")
			}

			if logger.GetLevel() != testCase.expected {
				t.Errorf("expected level %v, got %v", testCase.expected, logger.GetLevel())
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !logging.ValidLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	for _, level := range []string{"", "trace", "fatal"} {
		if logging.ValidLevel(level) {
			t.Errorf("expected %q to be invalid", level)
		}
	}
}

func TestSetLevel(t *testing.T) {
	// Not parallel because it modifies global state.
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New("info"))

	logging.SetLevel("debug")
	if logging.Default().GetLevel() != log.DebugLevel {
		t.Error("SetLevel to debug failed")
	}

	logging.SetLevel("error")
	if logging.Default().GetLevel() != log.ErrorLevel {
		t.Error("SetLevel to error failed")
	}
}

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "warn")
	sl := slog.New(logger).WithGroup("highlight")

	sl.Info("dropped")
	sl.Warn("highlight failed", "lang", "go")

	out := buf.String()
	if bytes.Contains(buf.Bytes(), []byte("dropped")) {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte("highlight failed")) {
		t.Errorf("warn record missing: %q", out)
	}
}
