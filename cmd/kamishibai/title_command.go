package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kamishibai/internal/titles"
)

// newTitleCommand extracts the display title from an object key, for checking
// how a recording will be labeled before publishing it.
func newTitleCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "title <key>...",
		Short:       "Show the title extracted from recording keys",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, key := range args {
				fmt.Fprintf(out, "%s\t%s\n", key, titles.FromKey(key))
			}
			return nil
		},
	}
}
