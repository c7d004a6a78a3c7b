package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required. Set KAMISHIBAI_R2_BUCKET or edit the config file (create with 'kamishibai config init')")
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint is required. Set KAMISHIBAI_R2_ENDPOINT or edit the config file")
	}
	if !strings.HasPrefix(c.Storage.Endpoint, "http://") && !strings.HasPrefix(c.Storage.Endpoint, "https://") {
		return fmt.Errorf("storage.endpoint must be an http(s) URL, got %q", c.Storage.Endpoint)
	}
	return nil
}

func (c *Config) validateYouTube() error {
	switch c.YouTube.PrivacyStatus {
	case "private", "public", "unlisted":
	default:
		return fmt.Errorf("youtube.privacy_status must be private, public, or unlisted, got %q", c.YouTube.PrivacyStatus)
	}
	if !strings.Contains(c.YouTube.TitleFormat, "%s") {
		return errors.New("youtube.title_format must contain exactly one %s placeholder")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if _, err := time.Parse("2006-01-02", c.Schedule.StartDate); err != nil {
		return fmt.Errorf("schedule.start_date must be YYYY-MM-DD: %w", err)
	}
	if _, err := time.Parse("15:04:05", c.Schedule.PublishTime); err != nil {
		return fmt.Errorf("schedule.publish_time must be HH:MM:SS: %w", err)
	}
	if _, err := time.Parse("-07:00", c.Schedule.UTCOffset); err != nil {
		return fmt.Errorf("schedule.utc_offset must look like +09:00: %w", err)
	}
	if c.Schedule.VideosPerDay < 1 {
		return errors.New("schedule.videos_per_day must be at least 1")
	}
	return nil
}

func (c *Config) validateLedger() error {
	switch c.Ledger.Backend {
	case "remote":
		return nil
	case "local":
		if strings.TrimSpace(c.Ledger.LocalPath) == "" {
			return errors.New("ledger.local_path must be set when ledger.backend is local")
		}
		return nil
	default:
		return fmt.Errorf("ledger.backend must be remote or local, got %q", c.Ledger.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
