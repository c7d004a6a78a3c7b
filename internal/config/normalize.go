package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	if err := c.normalizeYouTube(); err != nil {
		return err
	}
	if err := c.normalizeThumbnail(); err != nil {
		return err
	}
	c.normalizeSchedule()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.LedgerKey = strings.TrimSpace(c.Storage.LedgerKey)
	if c.Storage.LedgerKey == "" {
		c.Storage.LedgerKey = defaultLedgerKey
	}
	if strings.TrimSpace(c.Storage.Region) == "" {
		c.Storage.Region = defaultRegion
	}

	// Environment variables win over file values so CI secrets never need to
	// be written into the config file.
	if v := os.Getenv("KAMISHIBAI_R2_ENDPOINT"); v != "" {
		c.Storage.Endpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("KAMISHIBAI_R2_BUCKET"); v != "" {
		c.Storage.Bucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("KAMISHIBAI_R2_ACCESS_KEY_ID"); v != "" {
		c.Storage.AccessKeyID = strings.TrimSpace(v)
	}
	if v := os.Getenv("KAMISHIBAI_R2_SECRET_ACCESS_KEY"); v != "" {
		c.Storage.SecretAccessKey = strings.TrimSpace(v)
	}
	return nil
}

func (c *Config) normalizeYouTube() error {
	var err error
	if strings.TrimSpace(c.YouTube.ClientSecretsFile) == "" {
		c.YouTube.ClientSecretsFile = defaultClientSecretsFile
	}
	if c.YouTube.ClientSecretsFile, err = expandPath(c.YouTube.ClientSecretsFile); err != nil {
		return fmt.Errorf("youtube.client_secrets_file: %w", err)
	}
	if strings.TrimSpace(c.YouTube.TokenFile) == "" {
		c.YouTube.TokenFile = defaultTokenFile
	}
	if c.YouTube.TokenFile, err = expandPath(c.YouTube.TokenFile); err != nil {
		return fmt.Errorf("youtube.token_file: %w", err)
	}
	if strings.TrimSpace(c.YouTube.CategoryID) == "" {
		c.YouTube.CategoryID = defaultCategoryID
	}
	if strings.TrimSpace(c.YouTube.PrivacyStatus) == "" {
		c.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
	if strings.TrimSpace(c.YouTube.TitleFormat) == "" {
		c.YouTube.TitleFormat = defaultTitleFormat
	}
	if strings.TrimSpace(c.YouTube.DescriptionTemplate) == "" {
		c.YouTube.DescriptionTemplate = defaultDescriptionTemplate
	}
	if len(c.YouTube.Tags) == 0 {
		c.YouTube.Tags = append([]string(nil), defaultTags...)
	}
	if c.YouTube.ChunkSizeMiB <= 0 {
		c.YouTube.ChunkSizeMiB = defaultChunkSizeMiB
	}
	return nil
}

func (c *Config) normalizeThumbnail() error {
	var err error
	if strings.TrimSpace(c.Thumbnail.TemplateImage) == "" {
		c.Thumbnail.TemplateImage = defaultTemplateImage
	}
	if c.Thumbnail.TemplateImage, err = expandPath(c.Thumbnail.TemplateImage); err != nil {
		return fmt.Errorf("thumbnail.template_image: %w", err)
	}
	c.Thumbnail.FontPath = strings.TrimSpace(c.Thumbnail.FontPath)
	if c.Thumbnail.FontPath == "" {
		c.Thumbnail.FontPath = defaultFontPath
	}
	return nil
}

func (c *Config) normalizeSchedule() {
	if strings.TrimSpace(c.Schedule.StartDate) == "" {
		c.Schedule.StartDate = defaultStartDate
	}
	if c.Schedule.VideosPerDay <= 0 {
		c.Schedule.VideosPerDay = defaultVideosPerDay
	}
	if strings.TrimSpace(c.Schedule.PublishTime) == "" {
		c.Schedule.PublishTime = defaultPublishTime
	}
	if strings.TrimSpace(c.Schedule.UTCOffset) == "" {
		c.Schedule.UTCOffset = defaultUTCOffset
	}
}

func (c *Config) normalizeLedger() error {
	c.Ledger.Backend = strings.ToLower(strings.TrimSpace(c.Ledger.Backend))
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = defaultLedgerBackend
	}
	if strings.TrimSpace(c.Ledger.LocalPath) != "" {
		var err error
		if c.Ledger.LocalPath, err = expandPath(c.Ledger.LocalPath); err != nil {
			return fmt.Errorf("ledger.local_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
