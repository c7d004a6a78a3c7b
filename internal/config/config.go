package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and asset location configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Storage contains configuration for the S3-compatible bucket that holds the
// audio recordings and the publication ledger.
type Storage struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	LedgerKey       string `toml:"ledger_key"`
}

// YouTube contains configuration for the publishing platform.
type YouTube struct {
	ClientSecretsFile   string   `toml:"client_secrets_file"`
	TokenFile           string   `toml:"token_file"`
	CategoryID          string   `toml:"category_id"`
	PrivacyStatus       string   `toml:"privacy_status"`
	Tags                []string `toml:"tags"`
	TitleFormat         string   `toml:"title_format"`
	DescriptionTemplate string   `toml:"description_template"`
	MadeForKids         bool     `toml:"made_for_kids"`
	ChunkSizeMiB        int      `toml:"chunk_size_mib"`
}

// Thumbnail contains configuration for title image rendering.
type Thumbnail struct {
	TemplateImage string `toml:"template_image"`
	FontPath      string `toml:"font_path"`
}

// Schedule contains configuration for deterministic publish slot computation.
type Schedule struct {
	StartDate    string `toml:"start_date"`
	VideosPerDay int    `toml:"videos_per_day"`
	PublishTime  string `toml:"publish_time"`
	UTCOffset    string `toml:"utc_offset"`
}

// Ledger selects the publication ledger backend. The remote backend stores the
// ledger object in the storage bucket; the local backend is the legacy
// flat-file adapter kept for pre-bucket installs.
type Ledger struct {
	Backend   string `toml:"backend"`
	LocalPath string `toml:"local_path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kamishibai.
//
// Configuration sections by subsystem:
//   - Paths: staging and log directories
//   - Storage: S3-compatible bucket holding recordings and the ledger
//   - YouTube: upload metadata and credential file locations
//   - Thumbnail: template image and font for title rendering
//   - Schedule: deterministic publish slot parameters
//   - Ledger: publication ledger backend selection
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - IgnoreKeys: object keys excluded from publishing unconditionally
type Config struct {
	Paths         Paths         `toml:"paths"`
	Storage       Storage       `toml:"storage"`
	YouTube       YouTube       `toml:"youtube"`
	Thumbnail     Thumbnail     `toml:"thumbnail"`
	Schedule      Schedule      `toml:"schedule"`
	Ledger        Ledger        `toml:"ledger"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	IgnoreKeys    []string      `toml:"ignore_keys"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/kamishibai/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and storage secrets
// filled from the environment when absent from the file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("kamishibai.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the encoder executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// IgnoreSet returns the unconditional exclusion list as a lookup set.
func (c *Config) IgnoreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.IgnoreKeys))
	for _, key := range c.IgnoreKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
