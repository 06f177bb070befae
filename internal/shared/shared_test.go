package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("staging ready")

		if !strings.Contains(buf.String(), "staging ready") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("NewLogger(nil) returned nil")
		}
	})
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	child := WithLogger(logger, "table", "teams")
	child.Info("exported")

	out := buf.String()
	if !strings.Contains(out, "table") || !strings.Contains(out, "teams") {
		t.Errorf("expected child logger fields in output, got %q", out)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("should be suppressed")

	if strings.Contains(buf.String(), "suppressed") {
		t.Error("info log should be suppressed at error level")
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Error("GenerateID() should not return empty strings")
	}
	if a == b {
		t.Error("GenerateID() should return unique values")
	}
	if len(a) != 36 {
		t.Errorf("GenerateID() length = %v, want 36", len(a))
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("ENVOR_PROBE", "set")
	if got := EnvOr("ENVOR_PROBE", "fallback"); got != "set" {
		t.Errorf("EnvOr() = %v, want set", got)
	}

	t.Setenv("ENVOR_PROBE", "")
	if got := EnvOr("ENVOR_PROBE", "fallback"); got != "fallback" {
		t.Errorf("EnvOr() = %v, want fallback for empty value", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"migrated": 7}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Error("compact output should not contain newlines")
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if !strings.Contains(string(pretty), "  \"migrated\"") {
		t.Errorf("pretty output should be indented, got %q", string(pretty))
	}
}
