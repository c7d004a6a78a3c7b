package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kamishibai/internal/pipeline"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTitleCommandExtractsTitles(t *testing.T) {
	output, err := executeCommand(t, "title", "0123-「桃太郎」.m4a", "語り#3 浦島太郎(2).m4a")
	if err != nil {
		t.Fatalf("title command failed: %v", err)
	}
	if !strings.Contains(output, "桃太郎") {
		t.Fatalf("expected corner bracket title, got %q", output)
	}
	if !strings.Contains(output, "浦島太郎") {
		t.Fatalf("expected session label stripped, got %q", output)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected output to mention target path, got %q", output)
	}

	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(body), "[storage]") {
		t.Fatalf("sample config missing storage section: %s", body)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}

func TestPrintSummaryRendersItems(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	printSummary(cmd, pipeline.Summary{
		RunID:          "run-x",
		Candidates:     1,
		Published:      1,
		TotalPublished: 4,
		Items: []pipeline.ItemResult{
			{
				Key:       "0123-「桃太郎」.m4a",
				Title:     "桃太郎",
				Status:    pipeline.StatusCommitted,
				VideoID:   "vid-1",
				PublishAt: "2025-12-27T09:00:00+09:00",
			},
		},
	}, false)

	output := buf.String()
	if !strings.Contains(output, "桃太郎") || !strings.Contains(output, "vid-1") {
		t.Fatalf("summary table missing fields: %q", output)
	}
	if !strings.Contains(output, "Published 1, failed 0, 4 total in ledger") {
		t.Fatalf("summary footer missing: %q", output)
	}
}

func TestPrintSummaryDryRun(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	printSummary(cmd, pipeline.Summary{
		Candidates: 2,
		Items: []pipeline.ItemResult{
			{Key: "a.m4a", Title: "a", Status: pipeline.StatusPlanned, PublishAt: "2025-12-27T09:00:00+09:00"},
			{Key: "b.m4a", Title: "b", Status: pipeline.StatusPlanned, PublishAt: "2025-12-27T09:00:00+09:00"},
		},
	}, true)

	output := buf.String()
	if !strings.Contains(output, "Dry run: 2 recording(s) would be published") {
		t.Fatalf("dry run footer missing: %q", output)
	}
}
