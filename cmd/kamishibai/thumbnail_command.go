package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kamishibai/internal/thumbnail"
)

// newThumbnailCommand renders a title card locally, for checking the template
// and font before a run.
func newThumbnailCommand(cmdCtx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "thumbnail <title>",
		Short: "Render a title card image locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			composer := thumbnail.New(cfg.Thumbnail, logger)
			if err := composer.Render(args[0], output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "thumbnail.png", "Output image path")
	return cmd
}
