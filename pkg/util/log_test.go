package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// saveLoggerState saves the current logger state for restoration
func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

// restoreLoggerState restores the logger to its previous state
func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLogLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestSetJSONFormat(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetJSONFormat()

	WithStage("nodes").Infof("Provisioned %d/%d nodes", 4, 4)

	output := buf.String()
	if len(output) == 0 || output[0] != '{' {
		t.Errorf("Expected JSON output starting with '{', got: %s", output)
	}
	if !strings.Contains(output, `"stage":"nodes"`) {
		t.Errorf("Expected stage field in JSON output, got: %s", output)
	}
}

func TestWithStage(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)

	WithStage("links").Info("wiring")

	if !strings.Contains(buf.String(), "stage=links") {
		t.Errorf("Expected stage field in output, got: %s", buf.String())
	}
}

func TestWithNode(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)

	WithNode("CoreRouter-1").Warn("not correlated")

	if !strings.Contains(buf.String(), "node=CoreRouter-1") {
		t.Errorf("Expected node field in output, got: %s", buf.String())
	}
}

func TestWarnf(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)

	Warnf("Writing metrics: %v", "permission denied")
	if !strings.Contains(buf.String(), "level=warning") || !strings.Contains(buf.String(), "permission denied") {
		t.Errorf("Expected warning in output, got: %s", buf.String())
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel("info")

	WithNode("VPCS-1").Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output at info level, got: %s", buf.String())
	}

	SetLogLevel("debug")
	WithNode("VPCS-1").Debugf("shown %d", 2)
	if buf.Len() == 0 {
		t.Error("Expected debug output at debug level")
	}
}
