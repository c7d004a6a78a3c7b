package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kamishibai/internal/ledger"
	"kamishibai/internal/schedule"
	"kamishibai/internal/storage"
)

func newScheduleCommand(cmdCtx *commandContext) *cobra.Command {
	var count int
	var from int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show upcoming publish slots",
		Long: "Show the next publish slots. By default slots start at the current\n" +
			"ledger size, which is where the next run will begin assigning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			planner, err := schedule.NewPlanner(cfg.Schedule)
			if err != nil {
				return err
			}

			start := from
			if start < 0 {
				ctx := cmd.Context()
				store, err := storage.NewS3Store(ctx, cfg.Storage)
				if err != nil {
					return fmt.Errorf("connect to storage: %w", err)
				}
				published, err := ledger.NewRemote(store, cfg.Storage.LedgerKey).Load(ctx)
				if err != nil {
					return fmt.Errorf("load ledger: %w", err)
				}
				start = published.Len()
			}

			rows := make([][]string, 0, count)
			for i := 0; i < count; i++ {
				slot := start + i
				rows = append(rows, []string{
					strconv.Itoa(slot),
					planner.PublishAt(slot),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Slot", "Publish At"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10, "Number of slots to show")
	cmd.Flags().IntVar(&from, "from", -1, "First slot index (-1 = next unassigned slot from the ledger)")
	return cmd
}
