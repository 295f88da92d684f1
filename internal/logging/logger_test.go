package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_CreatesDirAndWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log, err := NewLogger(dir, PingerLogName, Options{})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Info("test_message_from_logging_test")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, PingerLogName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"test_message_from_logging_test"`) {
		t.Fatalf("entry missing from %s", b)
	}
	if !strings.Contains(string(b), `"ts":`) {
		t.Fatalf("want ts key in %s", b)
	}
}

func TestNewLogger_SeparateFiles(t *testing.T) {
	dir := t.TempDir()
	op, err := NewLogger(dir, PingerLogName, Options{})
	if err != nil {
		t.Fatal(err)
	}
	app, err := NewLogger(dir, AppLogName, Options{})
	if err != nil {
		t.Fatal(err)
	}
	op.Info("op_only")
	app.Info("app_only")
	_ = op.Sync()
	_ = app.Sync()

	appBytes, _ := os.ReadFile(filepath.Join(dir, AppLogName))
	if strings.Contains(string(appBytes), "op_only") || !strings.Contains(string(appBytes), "app_only") {
		t.Fatalf("app.log content unexpected: %s", appBytes)
	}
}
