package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kamishibai/internal/ledger"
	"kamishibai/internal/storage"
)

func newLedgerCommand(cmdCtx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Publication ledger utilities",
	}

	ledgerCmd.AddCommand(newLedgerShowCommand(cmdCtx))
	ledgerCmd.AddCommand(newLedgerImportCommand(cmdCtx))
	return ledgerCmd
}

func newLedgerShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every published recording key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := storage.NewS3Store(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("connect to storage: %w", err)
			}
			published, err := ledger.NewRemote(store, cfg.Storage.LedgerKey).Load(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, key := range published.Keys() {
				fmt.Fprintln(out, key)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d published recording(s)\n", published.Len())
			return nil
		},
	}
}

// newLedgerImportCommand merges a legacy flat-file ledger into the bucket
// ledger, so pre-bucket installs can migrate their publication record.
func newLedgerImportCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a local ledger file into the bucket ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read ledger file: %w", err)
			}
			incoming := ledger.DecodeSet(body)
			if incoming.Len() == 0 {
				return fmt.Errorf("no keys found in %s", args[0])
			}

			store, err := storage.NewS3Store(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("connect to storage: %w", err)
			}
			remote := ledger.NewRemote(store, cfg.Storage.LedgerKey)
			existing, err := remote.Load(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}

			added := 0
			for _, key := range incoming.Keys() {
				if existing.Contains(key) {
					continue
				}
				if err := remote.Commit(ctx, key); err != nil {
					return fmt.Errorf("commit %q: %w", key, err)
				}
				added++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new key(s); ledger now has %d\n", added, existing.Len())
			return nil
		},
	}
	return cmd
}
