package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wtoxd.log")

	logger, err := New(path, "main", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["session"] != "main" {
		t.Errorf("session = %v, want main", entry["session"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")

	logger, err := New(path, "main", Options{})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	_ = logger.Sync()
	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("debug entry written at info level: %q", data)
	}

	logger, err = New(path, "main", Options{Debug: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("shown")
	_ = logger.Sync()
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "shown") {
		t.Errorf("debug entry missing: %q", data)
	}
}
