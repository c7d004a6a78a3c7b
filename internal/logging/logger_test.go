package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kamishibai/internal/logging"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "kamishibai.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.WithComponent(logger, "pipeline")
	logger.Info("item published", logging.String(logging.FieldKey, "0123-momotaro.m4a"), logging.Int("attempt", 1))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO pipeline: item published") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "key=0123-momotaro.m4a") {
		t.Fatalf("expected key attr in %q", line)
	}
	if !strings.Contains(line, "attempt=1") {
		t.Fatalf("expected attempt attr in %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "kamishibai.log")

	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("ledger commit failed", logging.String(logging.FieldKey, "a.mp3"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{`"msg":"ledger commit failed"`, `"level":"warn"`, `"key":"a.mp3"`} {
		if !strings.Contains(string(data), fragment) {
			t.Fatalf("expected %s in %q", fragment, string(data))
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "kamishibai.log")

	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("suppressed")
	logger.Warn("kept")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "suppressed") {
		t.Fatalf("info line should have been filtered: %q", string(data))
	}
	if !strings.Contains(string(data), "kept") {
		t.Fatalf("warn line missing: %q", string(data))
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
