package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigure_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	Configure("info", "json")

	WithFields(logrus.Fields{"mode": "histogram", "width": 640}).Info("frame analyzed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "frame analyzed" {
		t.Errorf("Expected msg field, got %v", entry["msg"])
	}
	if entry["mode"] != "histogram" {
		t.Errorf("Expected mode field, got %v", entry["mode"])
	}
}

func TestConfigure_TextOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		SetOutput(os.Stdout)
		Configure("info", "json")
	}()
	Configure("warn", "text")

	Info("dropped")
	Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("Info should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "msg=kept") {
		t.Errorf("Expected text formatted warning, got %q", out)
	}
}
