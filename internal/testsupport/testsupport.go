// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"kamishibai/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a validated config seeded with unique temp directories
// per test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.Endpoint = "https://test.r2.cloudflarestorage.com"
	cfg.Storage.Bucket = "test-bucket"
	cfg.Storage.AccessKeyID = "test"
	cfg.Storage.SecretAccessKey = "test"
	cfg.Thumbnail.TemplateImage = filepath.Join(base, "thumbnail_template.jpg")
	cfg.Thumbnail.FontPath = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithIgnoreKeys sets the unconditional exclusion list on the test config.
func WithIgnoreKeys(keys ...string) ConfigOption {
	return func(c *config.Config) {
		c.IgnoreKeys = keys
	}
}

// WithSchedule overrides the schedule section on the test config.
func WithSchedule(startDate string, perDay int) ConfigOption {
	return func(c *config.Config) {
		c.Schedule.StartDate = startDate
		c.Schedule.VideosPerDay = perDay
	}
}
