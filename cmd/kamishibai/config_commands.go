package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kamishibai/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the storage bucket and credential paths before running kamishibai.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// newConfigShowCommand prints the effective configuration with secrets
// redacted.
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			rows := [][]string{
				{"config path", path},
				{"config file exists", yesNo(exists)},
				{"staging dir", cfg.Paths.StagingDir},
				{"log dir", cfg.Paths.LogDir},
				{"storage endpoint", cfg.Storage.Endpoint},
				{"storage bucket", cfg.Storage.Bucket},
				{"storage access key", redact(cfg.Storage.AccessKeyID)},
				{"ledger backend", cfg.Ledger.Backend},
				{"ledger key", cfg.Storage.LedgerKey},
				{"schedule start", cfg.Schedule.StartDate},
				{"videos per day", strconv.Itoa(cfg.Schedule.VideosPerDay)},
				{"publish time", cfg.Schedule.PublishTime + " " + cfg.Schedule.UTCOffset},
				{"title format", cfg.YouTube.TitleFormat},
				{"privacy status", cfg.YouTube.PrivacyStatus},
				{"made for kids", yesNo(cfg.YouTube.MadeForKids)},
				{"thumbnail template", cfg.Thumbnail.TemplateImage},
				{"thumbnail font", cfg.Thumbnail.FontPath},
				{"ntfy topic", cfg.Notifications.NtfyTopic},
				{"log level", cfg.Logging.Level},
				{"ignore keys", strconv.Itoa(len(cfg.IgnoreKeys))},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + "****"
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Bucket: %s\n", cfg.Storage.Bucket)
			fmt.Fprintf(out, "Ledger backend: %s\n", cfg.Ledger.Backend)
			fmt.Fprintf(out, "Made for kids: %s\n", yesNo(cfg.YouTube.MadeForKids))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
