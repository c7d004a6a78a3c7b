package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kamishibai/internal/history"
	"kamishibai/internal/ledger"
	"kamishibai/internal/preflight"
	"kamishibai/internal/storage"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment checks, ledger state, and recent attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			printPreflight(cmd, preflight.RunAll(ctx, cfg))

			store, err := storage.NewS3Store(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("connect to storage: %w", err)
			}
			published, err := ledger.NewRemote(store, cfg.Storage.LedgerKey).Load(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			fmt.Fprintf(out, "\nPublished recordings: %d\n", published.Len())

			hist, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer hist.Close()

			attempts, err := hist.Recent(ctx, recent)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No recorded attempts")
				return nil
			}

			rows := make([][]string, 0, len(attempts))
			for _, attempt := range attempts {
				rows = append(rows, []string{
					strconv.FormatInt(attempt.ID, 10),
					attempt.Title,
					attempt.Status,
					attempt.PublishAt,
					attempt.StartedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Status", "Publish At", "Started"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent attempts to show")
	return cmd
}
